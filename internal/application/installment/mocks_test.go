package installment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appshared "github.com/autobargain/backend/internal/application/shared"
	"github.com/autobargain/backend/internal/domain/commission"
	"github.com/autobargain/backend/internal/domain/installment"
	"github.com/autobargain/backend/internal/domain/payment"
	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/subscription"
	"github.com/autobargain/backend/internal/domain/trade"
)

// MockInstallmentRepository is a mock implementation of installment.Repository
type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*installment.Installment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*installment.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindBySubject(ctx context.Context, subject trade.Subject) ([]installment.Installment, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]installment.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindOverdue(ctx context.Context, bargainID uuid.UUID, asOf time.Time) ([]installment.Installment, error) {
	args := m.Called(ctx, bargainID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]installment.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) SaveAll(ctx context.Context, installments []*installment.Installment) error {
	args := m.Called(ctx, installments)
	return args.Error(0)
}

func (m *MockInstallmentRepository) SaveWithLock(ctx context.Context, inst *installment.Installment) error {
	args := m.Called(ctx, inst)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of payment.Repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByTarget(ctx context.Context, target payment.Target) ([]payment.Payment, error) {
	args := m.Called(ctx, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Payment), args.Error(1)
}

// MockTransactionRepository is a mock implementation of trade.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByIDForBargain(ctx context.Context, bargainID, id uuid.UUID) (*trade.Transaction, error) {
	args := m.Called(ctx, bargainID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAllForBargain(ctx context.Context, bargainID uuid.UUID, kind trade.SubjectType, filter shared.Filter) ([]trade.Transaction, error) {
	args := m.Called(ctx, bargainID, kind, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountForBargain(ctx context.Context, bargainID uuid.UUID, kind trade.SubjectType, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, bargainID, kind, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, transaction *trade.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) SaveWithLock(ctx context.Context, transaction *trade.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type testRepos struct {
	installments *MockInstallmentRepository
	payments     *MockPaymentRepository
	transactions *MockTransactionRepository
}

func (r *testRepos) Vehicles() trade.VehicleRepository         { return nil }
func (r *testRepos) Customers() trade.CustomerRepository       { return nil }
func (r *testRepos) Transactions() trade.TransactionRepository { return r.transactions }
func (r *testRepos) Commissions() commission.Repository        { return nil }
func (r *testRepos) Installments() installment.Repository      { return r.installments }
func (r *testRepos) Payments() payment.Repository              { return r.payments }
func (r *testRepos) Subscriptions() subscription.Repository    { return nil }

type testScope struct {
	repos *testRepos
	calls int
}

func (s *testScope) Execute(ctx context.Context, fn func(repos appshared.Repositories) error) error {
	s.calls++
	return fn(s.repos)
}

func newTestRepos() *testRepos {
	return &testRepos{
		installments: new(MockInstallmentRepository),
		payments:     new(MockPaymentRepository),
		transactions: new(MockTransactionRepository),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(at time.Time) appshared.Clock {
	return appshared.NewFixedClock(func() time.Time { return at }, time.UTC)
}

// saleOnInstallments is a 2,500,000 sale at 5% commission with 375,000 down
// over four months from 15 Jan 2024: four installments of 500,000.
func saleOnInstallments(t *testing.T, bargainID uuid.UUID) (*trade.Transaction, []*installment.Installment) {
	t.Helper()
	tx, err := trade.NewTransaction(bargainID, trade.Terms{
		Kind:              trade.SubjectSale,
		VehicleID:         uuid.New(),
		CustomerID:        uuid.New(),
		OriginalPrice:     dec("2500000"),
		BargainPrice:      dec("2500000"),
		CommissionAmount:  dec("125000"),
		PaymentType:       trade.PaymentTypeInstallment,
		InstallmentMonths: 4,
		DownPayment:       dec("375000"),
		TransactionDate:   date(2024, 1, 15),
	})
	require.NoError(t, err)
	tx.ClearDomainEvents()

	installments, err := installment.NewSchedule(bargainID, tx.Subject(), installment.Plan{
		NetAmount:   tx.NetAmount,
		DownPayment: tx.DownPayment,
		TermMonths:  4,
		StartDate:   date(2024, 1, 15),
	})
	require.NoError(t, err)
	for _, inst := range installments {
		inst.ClearDomainEvents()
	}
	return tx, installments
}

func payAll(installments []*installment.Installment) {
	for _, inst := range installments {
		inst.PaidAmount = inst.Amount
		inst.Status = installment.StatusPaid
	}
}

func cloneInstallment(inst *installment.Installment) *installment.Installment {
	c := *inst
	return &c
}

func cloneTransaction(tx *trade.Transaction) *trade.Transaction {
	c := *tx
	return &c
}

func values(installments []*installment.Installment) []installment.Installment {
	out := make([]installment.Installment, len(installments))
	for i, inst := range installments {
		out[i] = *inst
	}
	return out
}
