package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when NewBusinessMetrics gets no meter.
var ErrMeterNil = errors.New("NewBusinessMetrics: meter cannot be nil")

var minorUnits = decimal.NewFromInt(100)

// BusinessMetrics counts commission, installment and subscription activity.
// A nil *BusinessMetrics records nothing, so services may run without one.
type BusinessMetrics struct {
	transactionsCreated *Counter
	commissionsRecorded *Counter
	commissionAmount    *Counter
	installmentsCreated *Counter
	paymentsRecorded    *Counter
	paymentAmount       *Counter
	paymentRetries      *Counter
	overdueInstallments *Gauge
	subscriptionsSynced *Counter
	operationDuration   *Histogram
}

// NewBusinessMetrics registers every instrument on meter.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BusinessMetrics{}
	counters := []struct {
		target                  **Counter
		name, description, unit string
	}{
		{&bm.transactionsCreated, "bargain_transactions_created_total", "Purchases and sales recorded", "{transactions}"},
		{&bm.commissionsRecorded, "bargain_commissions_recorded_total", "Commission records written", "{commissions}"},
		{&bm.commissionAmount, "bargain_commission_amount_total", "Commission earned in minor currency units", "{paisa}"},
		{&bm.installmentsCreated, "bargain_installments_scheduled_total", "Installments created by scheduling", "{installments}"},
		{&bm.paymentsRecorded, "bargain_payments_recorded_total", "Payments recorded", "{payments}"},
		{&bm.paymentAmount, "bargain_payment_amount_total", "Payment amount in minor currency units", "{paisa}"},
		{&bm.paymentRetries, "bargain_payment_conflict_retries_total", "Payments retried after a concurrent update", "{retries}"},
		{&bm.subscriptionsSynced, "bargain_subscriptions_synced_total", "Subscriptions visited by the status sync", "{subscriptions}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	bm.overdueInstallments, err = NewGauge(meter, "bargain_overdue_installments", "Overdue installments found by the last sweep", "{installments}")
	if err != nil {
		return nil, err
	}
	bm.operationDuration, err = NewHistogram(meter, "bargain_operation_duration_seconds", "Duration of service operations", "s", OperationDurationBuckets...)
	if err != nil {
		return nil, err
	}
	return bm, nil
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnits).IntPart()
}

// RecordTransaction counts a new purchase or sale.
func (bm *BusinessMetrics) RecordTransaction(ctx context.Context, bargainID uuid.UUID, kind, paymentType string) {
	if bm == nil {
		return
	}
	bm.transactionsCreated.Inc(ctx,
		AttrBargainID.String(bargainID.String()),
		AttrTransactionKind.String(kind),
		AttrPaymentType.String(paymentType),
	)
}

// RecordCommission counts a commission record and its amount.
func (bm *BusinessMetrics) RecordCommission(ctx context.Context, bargainID uuid.UUID, kind, policyKind, source string, amount decimal.Decimal) {
	if bm == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrBargainID.String(bargainID.String()),
		AttrTransactionKind.String(kind),
		AttrPolicyKind.String(policyKind),
		AttrPolicySource.String(source),
	}
	bm.commissionsRecorded.Inc(ctx, attrs...)
	bm.commissionAmount.Add(ctx, toMinorUnits(amount), attrs...)
}

// RecordInstallmentsScheduled counts installments created for a transaction.
func (bm *BusinessMetrics) RecordInstallmentsScheduled(ctx context.Context, bargainID uuid.UUID, count int) {
	if bm == nil || count == 0 {
		return
	}
	bm.installmentsCreated.Add(ctx, int64(count), AttrBargainID.String(bargainID.String()))
}

// RecordPayment counts a payment against an installment or subscription.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, bargainID uuid.UUID, target, method string, amount decimal.Decimal) {
	if bm == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrBargainID.String(bargainID.String()),
		AttrPaymentTarget.String(target),
		AttrPaymentMethod.String(method),
	}
	bm.paymentsRecorded.Inc(ctx, attrs...)
	bm.paymentAmount.Add(ctx, toMinorUnits(amount), attrs...)
}

// RecordPaymentRetry counts a payment retried after a version conflict.
func (bm *BusinessMetrics) RecordPaymentRetry(ctx context.Context, bargainID uuid.UUID) {
	if bm == nil {
		return
	}
	bm.paymentRetries.Inc(ctx, AttrBargainID.String(bargainID.String()))
}

// RecordOverdue sets the overdue gauge; uuid.Nil means every bargain.
func (bm *BusinessMetrics) RecordOverdue(ctx context.Context, bargainID uuid.UUID, count int) {
	if bm == nil {
		return
	}
	bm.overdueInstallments.Record(ctx, int64(count), AttrBargainID.String(bargainID.String()))
}

// RecordSubscriptionSynced counts a subscription visited by the sync, by resulting status.
func (bm *BusinessMetrics) RecordSubscriptionSynced(ctx context.Context, status string) {
	if bm == nil {
		return
	}
	bm.subscriptionsSynced.Inc(ctx, AttrSubscription.String(status))
}

// ObserveOperation records how long a service operation took.
func (bm *BusinessMetrics) ObserveOperation(ctx context.Context, operation string, start time.Time) {
	if bm == nil {
		return
	}
	bm.operationDuration.RecordDuration(ctx, time.Since(start), AttrOperation.String(operation))
}
