package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists subscriptions
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	// FindLatestForBargain returns the bargain's most recent subscription
	FindLatestForBargain(ctx context.Context, bargainID uuid.UUID) (*Subscription, error)
	// FindAll returns every subscription in batches for status sync
	FindAll(ctx context.Context, offset, limit int) ([]Subscription, error)
	Save(ctx context.Context, subscription *Subscription) error
	SaveWithLock(ctx context.Context, subscription *Subscription) error
}
