package installment

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appshared "github.com/autobargain/backend/internal/application/shared"
	"github.com/autobargain/backend/internal/domain/installment"
	"github.com/autobargain/backend/internal/domain/payment"
	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
)

func newService(repos *testRepos, retries int, at time.Time) (*InstallmentService, *testScope) {
	scope := &testScope{repos: repos}
	svc := NewInstallmentService(scope, repos.installments, repos.payments, retries)
	svc.SetClock(fixedClock(at))
	return svc, scope
}

func paymentRequest(installmentID uuid.UUID, amount string) RecordPaymentRequest {
	return RecordPaymentRequest{
		InstallmentID:   installmentID,
		Amount:          dec(amount),
		PaymentDate:     date(2024, 2, 10),
		Method:          "bank_transfer",
		ReferenceNumber: "HBL-88231",
	}
}

func TestInstallmentService_RecordPayment(t *testing.T) {
	bargainID := uuid.New()
	tx, installments := saleOnInstallments(t, bargainID)
	first := installments[0]

	repos := newTestRepos()
	svc, _ := newService(repos, 3, time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC))
	publisher := new(MockEventPublisher)
	svc.SetEventPublisher(publisher)

	repos.installments.On("FindByID", mock.Anything, first.ID).Return(first, nil)
	repos.installments.On("FindBySubject", mock.Anything, tx.Subject()).Return(values(installments), nil)
	repos.transactions.On("FindByIDForBargain", mock.Anything, bargainID, tx.ID).Return(tx, nil)
	repos.payments.On("Save", mock.Anything, mock.MatchedBy(func(p *payment.Payment) bool {
		return p.Target == payment.InstallmentTarget(first.ID) && p.Amount.Equal(dec("500000"))
	})).Return(nil)
	repos.installments.On("SaveWithLock", mock.Anything, first).Return(nil)
	repos.transactions.On("SaveWithLock", mock.Anything, tx).Return(nil)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 2 &&
			events[0].EventType() == installment.EventTypeInstallmentPaymentReceived &&
			events[1].EventType() == installment.EventTypeInstallmentPaid
	})).Return(nil)

	resp, err := svc.RecordPayment(context.Background(), bargainID, paymentRequest(first.ID, "500000"))
	require.NoError(t, err)

	assert.Equal(t, installment.StatusPaid, resp.Installment.Status)
	assert.True(t, resp.Installment.Outstanding.IsZero())
	require.NotNil(t, resp.Installment.PaidDate)
	assert.Equal(t, date(2024, 2, 10), *resp.Installment.PaidDate)
	assert.True(t, resp.TransactionPaid.Equal(dec("875000")))
	assert.True(t, resp.TransactionPending.Equal(dec("1500000")))
	assert.Equal(t, trade.TransactionStatusActive, resp.TransactionStatus)
	assert.Equal(t, payment.MethodBankTransfer, resp.Method)

	repos.installments.AssertExpectations(t)
	repos.transactions.AssertExpectations(t)
	repos.payments.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestInstallmentService_RecordPayment_PartialThenOverpaid(t *testing.T) {
	bargainID := uuid.New()
	tx, installments := saleOnInstallments(t, bargainID)
	second := installments[1]

	repos := newTestRepos()
	svc, _ := newService(repos, 0, time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))

	repos.installments.On("FindByID", mock.Anything, second.ID).Return(second, nil)
	repos.installments.On("FindBySubject", mock.Anything, tx.Subject()).Return(values(installments), nil)
	repos.transactions.On("FindByIDForBargain", mock.Anything, bargainID, tx.ID).Return(tx, nil)
	repos.payments.On("Save", mock.Anything, mock.Anything).Return(nil)
	repos.installments.On("SaveWithLock", mock.Anything, second).Return(nil)
	repos.transactions.On("SaveWithLock", mock.Anything, tx).Return(nil)

	resp, err := svc.RecordPayment(context.Background(), bargainID, paymentRequest(second.ID, "200000"))
	require.NoError(t, err)
	// due 15 Mar, still short on 20 Mar
	assert.Equal(t, installment.StatusOverdue, resp.Installment.Status)
	assert.True(t, resp.Installment.Outstanding.Equal(dec("300000")))

	resp, err = svc.RecordPayment(context.Background(), bargainID, paymentRequest(second.ID, "350000"))
	require.NoError(t, err)
	assert.Equal(t, installment.StatusPaid, resp.Installment.Status)
	assert.True(t, resp.Installment.Overpayment.Equal(dec("50000")))
	assert.True(t, resp.TransactionPaid.Equal(dec("925000")))
}

func TestInstallmentService_RecordPayment_RetriesConflicts(t *testing.T) {
	bargainID := uuid.New()
	tx, installments := saleOnInstallments(t, bargainID)
	first := installments[0]

	t.Run("succeeds on a fresh read", func(t *testing.T) {
		repos := newTestRepos()
		svc, scope := newService(repos, 2, time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC))

		stale, fresh := cloneInstallment(first), cloneInstallment(first)
		repos.installments.On("FindByID", mock.Anything, first.ID).Return(stale, nil).Once()
		repos.installments.On("FindByID", mock.Anything, first.ID).Return(fresh, nil).Once()
		repos.transactions.On("FindByIDForBargain", mock.Anything, bargainID, tx.ID).Return(cloneTransaction(tx), nil).Once()
		repos.transactions.On("FindByIDForBargain", mock.Anything, bargainID, tx.ID).Return(cloneTransaction(tx), nil).Once()
		repos.installments.On("FindBySubject", mock.Anything, tx.Subject()).Return(values(installments), nil)
		repos.payments.On("Save", mock.Anything, mock.Anything).Return(nil)
		repos.installments.On("SaveWithLock", mock.Anything, stale).Return(shared.ErrConcurrencyConflict).Once()
		repos.installments.On("SaveWithLock", mock.Anything, fresh).Return(nil).Once()
		repos.transactions.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil).Once()

		resp, err := svc.RecordPayment(context.Background(), bargainID, paymentRequest(first.ID, "500000"))
		require.NoError(t, err)
		assert.Equal(t, 2, scope.calls)
		assert.True(t, resp.Installment.PaidAmount.Equal(dec("500000")))
		repos.installments.AssertExpectations(t)
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		repos := newTestRepos()
		svc, scope := newService(repos, 1, time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC))

		for range 2 {
			repos.installments.On("FindByID", mock.Anything, first.ID).Return(cloneInstallment(first), nil).Once()
			repos.transactions.On("FindByIDForBargain", mock.Anything, bargainID, tx.ID).Return(cloneTransaction(tx), nil).Once()
		}
		repos.installments.On("FindBySubject", mock.Anything, tx.Subject()).Return(values(installments), nil)
		repos.payments.On("Save", mock.Anything, mock.Anything).Return(nil)
		repos.installments.On("SaveWithLock", mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict)

		_, err := svc.RecordPayment(context.Background(), bargainID, paymentRequest(first.ID, "500000"))
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, 2, scope.calls)
	})
}

// lastInstallmentDue leaves only the fourth installment open, with the
// transaction already credited for the other three
func lastInstallmentDue(t *testing.T, bargainID uuid.UUID) (*trade.Transaction, []*installment.Installment) {
	t.Helper()
	tx, installments := saleOnInstallments(t, bargainID)
	payAll(installments[:3])
	require.NoError(t, tx.RecordCollection(dec("1500000"), false, date(2024, 4, 15)))
	return tx, installments
}

func settledEvents(events []shared.DomainEvent) bool {
	return len(events) == 3 &&
		events[0].EventType() == installment.EventTypeInstallmentPaymentReceived &&
		events[1].EventType() == installment.EventTypeInstallmentPaid &&
		events[2].EventType() == trade.EventTypeTransactionSettled
}

func TestInstallmentService_RecordPayment_SettlesOnLastInstallment(t *testing.T) {
	bargainID := uuid.New()
	tx, installments := lastInstallmentDue(t, bargainID)
	last := installments[3]
	version := tx.Version

	repos := newTestRepos()
	svc, _ := newService(repos, 3, time.Date(2024, 5, 15, 11, 0, 0, 0, time.UTC))
	publisher := new(MockEventPublisher)
	svc.SetEventPublisher(publisher)

	repos.installments.On("FindByID", mock.Anything, last.ID).Return(last, nil)
	repos.installments.On("FindBySubject", mock.Anything, tx.Subject()).Return(values(installments), nil)
	repos.transactions.On("FindByIDForBargain", mock.Anything, bargainID, tx.ID).Return(tx, nil)
	repos.payments.On("Save", mock.Anything, mock.Anything).Return(nil)
	repos.installments.On("SaveWithLock", mock.Anything, last).Return(nil)
	repos.transactions.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(saved *trade.Transaction) bool {
		return saved.IsSettled() && saved.Version == version+1
	})).Return(nil)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(settledEvents)).Return(nil)

	req := paymentRequest(last.ID, "500000")
	req.PaymentDate = date(2024, 5, 15)
	resp, err := svc.RecordPayment(context.Background(), bargainID, req)
	require.NoError(t, err)

	assert.Equal(t, trade.TransactionStatusCompleted, resp.TransactionStatus)
	assert.True(t, resp.TransactionPending.IsZero())
	require.NotNil(t, tx.SettledAt)
	assert.Empty(t, tx.GetDomainEvents())
	repos.transactions.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestInstallmentService_RecordPayment_SettlesAfterConflictingPayment(t *testing.T) {
	bargainID := uuid.New()
	tx, installments := lastInstallmentDue(t, bargainID)
	last := installments[3]

	// the first read still sees the third installment open: a concurrent
	// payment for it commits first and bumps the transaction version
	before := values(installments)
	before[2].PaidAmount = dec("0")
	before[2].Status = installment.StatusPending

	repos := newTestRepos()
	svc, scope := newService(repos, 2, time.Date(2024, 5, 15, 11, 0, 0, 0, time.UTC))
	publisher := new(MockEventPublisher)
	svc.SetEventPublisher(publisher)

	repos.installments.On("FindByID", mock.Anything, last.ID).Return(cloneInstallment(last), nil).Once()
	repos.installments.On("FindByID", mock.Anything, last.ID).Return(cloneInstallment(last), nil).Once()
	repos.installments.On("FindBySubject", mock.Anything, tx.Subject()).Return(before, nil).Once()
	repos.installments.On("FindBySubject", mock.Anything, tx.Subject()).Return(values(installments), nil).Once()
	repos.transactions.On("FindByIDForBargain", mock.Anything, bargainID, tx.ID).Return(cloneTransaction(tx), nil).Once()
	repos.transactions.On("FindByIDForBargain", mock.Anything, bargainID, tx.ID).Return(cloneTransaction(tx), nil).Once()
	repos.payments.On("Save", mock.Anything, mock.Anything).Return(nil)
	repos.installments.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)
	repos.transactions.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(saved *trade.Transaction) bool {
		return !saved.IsSettled()
	})).Return(shared.ErrConcurrencyConflict).Once()
	repos.transactions.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(saved *trade.Transaction) bool {
		return saved.IsSettled()
	})).Return(nil).Once()
	publisher.On("Publish", mock.Anything, mock.MatchedBy(settledEvents)).Return(nil).Once()

	resp, err := svc.RecordPayment(context.Background(), bargainID, paymentRequest(last.ID, "500000"))
	require.NoError(t, err)

	assert.Equal(t, 2, scope.calls)
	assert.Equal(t, trade.TransactionStatusCompleted, resp.TransactionStatus)
	repos.transactions.AssertExpectations(t)
	repos.installments.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestInstallmentService_RecordPayment_Rejects(t *testing.T) {
	bargainID := uuid.New()
	_, installments := saleOnInstallments(t, bargainID)
	first := installments[0]

	t.Run("unknown method", func(t *testing.T) {
		repos := newTestRepos()
		svc, scope := newService(repos, 3, time.Now())
		req := paymentRequest(first.ID, "1000")
		req.Method = "crypto"

		_, err := svc.RecordPayment(context.Background(), bargainID, req)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Zero(t, scope.calls)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		repos := newTestRepos()
		svc, scope := newService(repos, 3, time.Now())

		_, err := svc.RecordPayment(context.Background(), bargainID, paymentRequest(first.ID, "0"))
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
		assert.Zero(t, scope.calls)
	})

	t.Run("installment of another bargain", func(t *testing.T) {
		repos := newTestRepos()
		svc, _ := newService(repos, 3, time.Now())
		repos.installments.On("FindByID", mock.Anything, first.ID).Return(first, nil)

		_, err := svc.RecordPayment(context.Background(), uuid.New(), paymentRequest(first.ID, "1000"))
		assert.ErrorIs(t, err, shared.ErrNotFound)
		repos.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestInstallmentService_OverdueInstallments(t *testing.T) {
	bargainID := uuid.New()
	_, installments := saleOnInstallments(t, bargainID)

	karachi, err := time.LoadLocation("Asia/Karachi")
	require.NoError(t, err)

	repos := newTestRepos()
	scope := &testScope{repos: repos}
	svc := NewInstallmentService(scope, repos.installments, repos.payments, 3)
	svc.SetClock(appshared.NewFixedClock(time.Now, karachi))

	paid := cloneInstallment(installments[0])
	paid.PaidAmount = paid.Amount
	unpaid := cloneInstallment(installments[1])

	// 20:00 UTC on 15 Mar is already 16 Mar in Karachi, so 15 Mar is overdue
	now := time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)
	repos.installments.On("FindOverdue", mock.Anything, bargainID, date(2024, 3, 16)).
		Return([]installment.Installment{*paid, *unpaid}, nil)

	overdue, err := svc.OverdueInstallments(context.Background(), bargainID, now)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, unpaid.ID, overdue[0].ID)
	assert.Equal(t, installment.StatusOverdue, overdue[0].Status)
}

func TestInstallmentService_ListAndSummary(t *testing.T) {
	bargainID := uuid.New()
	tx, installments := saleOnInstallments(t, bargainID)
	installments[0].PaidAmount = installments[0].Amount

	repos := newTestRepos()
	svc, _ := newService(repos, 3, time.Now())
	repos.installments.On("FindBySubject", mock.Anything, tx.Subject()).Return(values(installments), nil)

	now := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)

	list, err := svc.ListInstallments(context.Background(), bargainID, tx.Subject(), now)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, installment.StatusPaid, list[0].Status)
	assert.Equal(t, installment.StatusOverdue, list[1].Status)
	assert.Equal(t, installment.StatusPending, list[2].Status)

	summary, err := svc.Summary(context.Background(), bargainID, tx.Subject(), now)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Count)
	assert.Equal(t, 1, summary.PaidCount)
	assert.Equal(t, 1, summary.OverdueCount)
	assert.True(t, summary.Outstanding.Equal(dec("1500000")))
	assert.False(t, summary.Settled)

	_, err = svc.ListInstallments(context.Background(), uuid.New(), tx.Subject(), now)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInstallmentService_Reconcile(t *testing.T) {
	bargainID := uuid.New()
	_, installments := saleOnInstallments(t, bargainID)
	inst := installments[0]

	repos := newTestRepos()
	svc, _ := newService(repos, 3, time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC))

	p1, err := payment.NewPayment(bargainID, payment.InstallmentTarget(inst.ID), payment.Details{
		Amount: dec("300000"), PaymentDate: date(2024, 2, 1), Method: payment.MethodCash,
	})
	require.NoError(t, err)
	p2, err := payment.NewPayment(bargainID, payment.InstallmentTarget(inst.ID), payment.Details{
		Amount: dec("200000"), PaymentDate: date(2024, 2, 12), Method: payment.MethodCheque,
	})
	require.NoError(t, err)

	repos.installments.On("FindByID", mock.Anything, inst.ID).Return(inst, nil)
	repos.payments.On("FindByTarget", mock.Anything, payment.InstallmentTarget(inst.ID)).Return([]payment.Payment{*p1, *p2}, nil)
	repos.installments.On("SaveWithLock", mock.Anything, inst).Return(nil).Once()

	resp, changed, err := svc.Reconcile(context.Background(), bargainID, inst.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, installment.StatusPaid, resp.Status)
	assert.Equal(t, date(2024, 2, 12), *resp.PaidDate)

	_, changed, err = svc.Reconcile(context.Background(), bargainID, inst.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	repos.installments.AssertNumberOfCalls(t, "SaveWithLock", 1)
}
