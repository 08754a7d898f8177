// Package shared holds contracts used by more than one application service.
package shared

import (
	"context"

	"github.com/autobargain/backend/internal/domain/commission"
	"github.com/autobargain/backend/internal/domain/installment"
	"github.com/autobargain/backend/internal/domain/payment"
	"github.com/autobargain/backend/internal/domain/subscription"
	"github.com/autobargain/backend/internal/domain/trade"
)

// TransactionScope runs a unit of work atomically. If fn returns an error
// every write made through the repositories is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to repositories bound to the current transaction
type Repositories interface {
	Vehicles() trade.VehicleRepository
	Customers() trade.CustomerRepository
	Transactions() trade.TransactionRepository
	Commissions() commission.Repository
	Installments() installment.Repository
	Payments() payment.Repository
	Subscriptions() subscription.Repository
}
