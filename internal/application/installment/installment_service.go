package installment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/autobargain/backend/internal/application/shared"
	"github.com/autobargain/backend/internal/domain/installment"
	"github.com/autobargain/backend/internal/domain/payment"
	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
	"github.com/autobargain/backend/internal/infrastructure/logger"
	"github.com/autobargain/backend/internal/infrastructure/telemetry"
)

// DefaultPaymentRetryAttempts is used when no retry count is configured
const DefaultPaymentRetryAttempts = 3

// InstallmentService collects installment payments and reports on schedules
type InstallmentService struct {
	scope           appshared.TransactionScope
	installmentRepo installment.Repository
	paymentRepo     payment.Repository
	retryAttempts   int
	eventPublisher  shared.EventPublisher
	metrics         *telemetry.BusinessMetrics
	clock           appshared.Clock
}

// NewInstallmentService creates a new InstallmentService. retryAttempts is the
// number of times a payment that lost an optimistic lock is retried.
func NewInstallmentService(
	scope appshared.TransactionScope,
	installmentRepo installment.Repository,
	paymentRepo payment.Repository,
	retryAttempts int,
) *InstallmentService {
	if retryAttempts < 0 {
		retryAttempts = DefaultPaymentRetryAttempts
	}
	return &InstallmentService{
		scope:           scope,
		installmentRepo: installmentRepo,
		paymentRepo:     paymentRepo,
		retryAttempts:   retryAttempts,
		clock:           appshared.NewClock(nil),
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *InstallmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *InstallmentService) SetMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// SetClock sets the clock used for dates and timestamps
func (s *InstallmentService) SetClock(clock appshared.Clock) {
	s.clock = clock
}

type collection struct {
	installment *installment.Installment
	payment     *payment.Payment
	transaction *trade.Transaction
}

// RecordPayment applies a payment to an installment and adds it to the
// transaction's paid total. The payment that pays off the last open
// installment also settles the transaction. A payment that races another update of the same
// installment or transaction is retried from a fresh read.
func (s *InstallmentService) RecordPayment(ctx context.Context, bargainID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "installment", "record_payment",
		telemetry.SpanAttrBargainID, bargainID.String(),
		telemetry.SpanAttrInstallmentID, req.InstallmentID.String(),
		telemetry.SpanAttrAmount, req.Amount.String())
	defer span.End()
	defer s.metrics.ObserveOperation(ctx, "record_payment", start)

	if err := appshared.ValidateRequest(req); err != nil {
		return nil, err
	}
	details := payment.Details{
		Amount:          req.Amount,
		PaymentDate:     s.clock.DateOf(req.PaymentDate),
		Method:          payment.Method(req.Method),
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}

	var (
		result *collection
		err    error
	)
	for attempt := 1; ; attempt++ {
		result, err = s.collect(ctx, bargainID, req.InstallmentID, details)
		if err == nil || !errors.Is(err, shared.ErrConcurrencyConflict) || attempt > s.retryAttempts {
			break
		}
		s.metrics.RecordPaymentRetry(ctx, bargainID)
		telemetry.AddEvent(span, "payment_retry", telemetry.SpanAttrAttempt, attempt)
		logger.L(ctx).Warn("installment payment lost an optimistic lock, retrying",
			zap.String("installment_id", req.InstallmentID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	inst, p, tx := result.installment, result.payment, result.transaction
	s.metrics.RecordPayment(ctx, bargainID, string(payment.TargetInstallment), p.Method.String(), p.Amount)

	logger.L(ctx).Info("installment payment recorded",
		zap.String("bargain_id", bargainID.String()),
		zap.String("installment_id", inst.ID.String()),
		zap.String("payment_id", p.ID.String()),
		zap.String("amount", p.Amount.StringFixed(2)),
		zap.String("status", string(inst.Status)),
		zap.String("transaction_pending", tx.PendingAmount.StringFixed(2)))

	if tx.IsSettled() && len(tx.GetDomainEvents()) > 0 {
		logger.L(ctx).Info("transaction settled",
			zap.String("bargain_id", bargainID.String()),
			zap.String("transaction_id", tx.ID.String()),
			zap.String("paid_amount", tx.PaidAmount.StringFixed(2)))
	}

	s.publish(ctx, append(inst.GetDomainEvents(), tx.GetDomainEvents()...))
	inst.ClearDomainEvents()
	tx.ClearDomainEvents()

	return &PaymentResponse{
		PaymentID:          p.ID,
		Amount:             p.Amount,
		PaymentDate:        p.PaymentDate,
		Method:             p.Method,
		ReferenceNumber:    p.ReferenceNumber,
		Installment:        ToInstallmentResponse(inst, s.clock.LocalNow()),
		TransactionPaid:    tx.PaidAmount,
		TransactionPending: tx.PendingAmount,
		TransactionStatus:  tx.Status,
	}, nil
}

func (s *InstallmentService) collect(ctx context.Context, bargainID, installmentID uuid.UUID, details payment.Details) (*collection, error) {
	now := s.clock.LocalNow()
	var result collection
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		inst, err := repos.Installments().FindByID(ctx, installmentID)
		if err != nil {
			return err
		}
		if inst.BargainID != bargainID {
			return shared.ErrNotFound
		}

		p, err := payment.NewPayment(bargainID, payment.InstallmentTarget(inst.ID), details)
		if err != nil {
			return err
		}
		if err := inst.ApplyPayment(p, now); err != nil {
			return err
		}

		tx, err := repos.Transactions().FindByIDForBargain(ctx, bargainID, inst.Subject.ID)
		if err != nil {
			return err
		}
		final, err := paysOff(ctx, repos, inst)
		if err != nil {
			return err
		}
		if err := tx.RecordCollection(p.Amount, final, now); err != nil {
			return err
		}

		if err := repos.Payments().Save(ctx, p); err != nil {
			return err
		}
		if err := repos.Installments().SaveWithLock(ctx, inst); err != nil {
			return err
		}
		if err := repos.Transactions().SaveWithLock(ctx, tx); err != nil {
			return err
		}

		result = collection{installment: inst, payment: p, transaction: tx}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// paysOff reports whether inst, now paid, was the last open installment of its
// purchase or sale. The check runs on the same read as the transaction update,
// so a losing concurrent payment retries against the winner's state.
func paysOff(ctx context.Context, repos appshared.Repositories, inst *installment.Installment) (bool, error) {
	if !inst.IsPaid() {
		return false, nil
	}
	siblings, err := repos.Installments().FindBySubject(ctx, inst.Subject)
	if err != nil {
		return false, err
	}
	for i := range siblings {
		if siblings[i].ID != inst.ID && !siblings[i].IsPaid() {
			return false, nil
		}
	}
	return true, nil
}

// ListInstallments returns the installments of a purchase or sale with their
// status derived as of now
func (s *InstallmentService) ListInstallments(ctx context.Context, bargainID uuid.UUID, subject trade.Subject, now time.Time) ([]InstallmentResponse, error) {
	installments, err := s.forSubject(ctx, bargainID, subject)
	if err != nil {
		return nil, err
	}
	return toInstallmentResponses(installments, now.In(s.clock.Location())), nil
}

// OverdueInstallments returns the unpaid installments due before now's date.
// uuid.Nil sweeps every bargain.
func (s *InstallmentService) OverdueInstallments(ctx context.Context, bargainID uuid.UUID, now time.Time) ([]InstallmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "installment", "overdue_installments",
		telemetry.SpanAttrBargainID, bargainID.String())
	defer span.End()

	local := now.In(s.clock.Location())
	installments, err := s.installmentRepo.FindOverdue(ctx, bargainID, s.clock.DateOf(now))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	overdue := make([]installment.Installment, 0, len(installments))
	for _, inst := range installments {
		if inst.IsOverdue(local) {
			overdue = append(overdue, inst)
		}
	}
	s.metrics.RecordOverdue(ctx, bargainID, len(overdue))
	return toInstallmentResponses(overdue, local), nil
}

// Summary totals the installments of a purchase or sale as of now
func (s *InstallmentService) Summary(ctx context.Context, bargainID uuid.UUID, subject trade.Subject, now time.Time) (*SummaryResponse, error) {
	installments, err := s.forSubject(ctx, bargainID, subject)
	if err != nil {
		return nil, err
	}
	summary := installment.Summarize(installments, now.In(s.clock.Location()))
	return &SummaryResponse{
		Subject: subject,
		Summary: summary,
		Settled: summary.Settled(),
	}, nil
}

// Reconcile recomputes an installment's paid amount from its recorded
// payments and reports whether it changed
func (s *InstallmentService) Reconcile(ctx context.Context, bargainID, installmentID uuid.UUID) (*InstallmentResponse, bool, error) {
	now := s.clock.LocalNow()
	var (
		reconciled *installment.Installment
		changed    bool
	)
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		inst, err := repos.Installments().FindByID(ctx, installmentID)
		if err != nil {
			return err
		}
		if inst.BargainID != bargainID {
			return shared.ErrNotFound
		}
		payments, err := repos.Payments().FindByTarget(ctx, payment.InstallmentTarget(inst.ID))
		if err != nil {
			return err
		}
		reconciled = inst
		if changed = inst.Reconcile(payments, now); !changed {
			return nil
		}
		return repos.Installments().SaveWithLock(ctx, inst)
	})
	if err != nil {
		return nil, false, err
	}

	if changed {
		logger.L(ctx).Info("installment reconciled",
			zap.String("installment_id", installmentID.String()),
			zap.String("paid_amount", reconciled.PaidAmount.StringFixed(2)),
			zap.String("status", string(reconciled.Status)))
	}
	response := ToInstallmentResponse(reconciled, now)
	return &response, changed, nil
}

func (s *InstallmentService) forSubject(ctx context.Context, bargainID uuid.UUID, subject trade.Subject) ([]installment.Installment, error) {
	if err := subject.Validate(); err != nil {
		return nil, err
	}
	installments, err := s.installmentRepo.FindBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	for i := range installments {
		if installments[i].BargainID != bargainID {
			return nil, shared.ErrNotFound
		}
	}
	return installments, nil
}

func (s *InstallmentService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Error("failed to publish installment events",
			zap.Int("events", len(events)),
			zap.Error(err))
	}
}
