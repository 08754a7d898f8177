package persistence

import (
	"context"

	"gorm.io/gorm"

	appshared "github.com/autobargain/backend/internal/application/shared"
	"github.com/autobargain/backend/internal/domain/commission"
	"github.com/autobargain/backend/internal/domain/installment"
	"github.com/autobargain/backend/internal/domain/payment"
	"github.com/autobargain/backend/internal/domain/subscription"
	"github.com/autobargain/backend/internal/domain/trade"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. If fn returns an error, the
// transaction is rolled back; otherwise it is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx})
	})
}

// gormRepositories hands out repositories bound to one transaction.
type gormRepositories struct {
	tx *gorm.DB
}

func (r *gormRepositories) Vehicles() trade.VehicleRepository {
	return NewGormVehicleRepository(r.tx)
}

func (r *gormRepositories) Customers() trade.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

func (r *gormRepositories) Transactions() trade.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

func (r *gormRepositories) Commissions() commission.Repository {
	return NewGormCommissionRepository(r.tx)
}

func (r *gormRepositories) Installments() installment.Repository {
	return NewGormInstallmentRepository(r.tx)
}

func (r *gormRepositories) Payments() payment.Repository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormRepositories) Subscriptions() subscription.Repository {
	return NewGormSubscriptionRepository(r.tx)
}

var (
	_ appshared.TransactionScope = (*GormTransactionScope)(nil)
	_ appshared.Repositories     = (*gormRepositories)(nil)
)
