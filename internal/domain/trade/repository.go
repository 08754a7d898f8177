package trade

import (
	"context"

	"github.com/google/uuid"

	"github.com/autobargain/backend/internal/domain/shared"
)

// BargainRepository persists bargains
type BargainRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Bargain, error)
	Save(ctx context.Context, bargain *Bargain) error
}

// CustomerRepository persists customers
type CustomerRepository interface {
	FindByIDForBargain(ctx context.Context, bargainID, id uuid.UUID) (*Customer, error)
	Save(ctx context.Context, customer *Customer) error
}

// VehicleRepository persists vehicles
type VehicleRepository interface {
	FindByIDForBargain(ctx context.Context, bargainID, id uuid.UUID) (*Vehicle, error)
	FindByRegistration(ctx context.Context, bargainID uuid.UUID, registrationNumber string) (*Vehicle, error)
	Save(ctx context.Context, vehicle *Vehicle) error
	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, vehicle *Vehicle) error
}

// TransactionRepository persists purchases and sales
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindByIDForBargain(ctx context.Context, bargainID, id uuid.UUID) (*Transaction, error)
	// FindAllForBargain lists transactions of one kind; an empty kind lists both
	FindAllForBargain(ctx context.Context, bargainID uuid.UUID, kind SubjectType, filter shared.Filter) ([]Transaction, error)
	// CountForBargain counts what FindAllForBargain matches, ignoring pagination
	CountForBargain(ctx context.Context, bargainID uuid.UUID, kind SubjectType, filter shared.Filter) (int64, error)
	Save(ctx context.Context, transaction *Transaction) error
	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, transaction *Transaction) error
}
