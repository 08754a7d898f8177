package payment

import "context"

// Repository stores payments. There is no update or delete.
type Repository interface {
	Save(ctx context.Context, payment *Payment) error
	// FindByTarget returns the payments of one target ordered by payment date
	FindByTarget(ctx context.Context, target Target) ([]Payment, error)
}
