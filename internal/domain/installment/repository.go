package installment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/autobargain/backend/internal/domain/trade"
)

// Repository persists installments
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Installment, error)
	// FindBySubject returns the installments of a transaction ordered by sequence number
	FindBySubject(ctx context.Context, subject trade.Subject) ([]Installment, error)
	// FindOverdue returns unpaid installments of a bargain due before asOf's date
	FindOverdue(ctx context.Context, bargainID uuid.UUID, asOf time.Time) ([]Installment, error)
	// SaveAll inserts a newly scheduled plan
	SaveAll(ctx context.Context, installments []*Installment) error
	// SaveWithLock updates an installment with an optimistic version check
	SaveWithLock(ctx context.Context, installment *Installment) error
}
