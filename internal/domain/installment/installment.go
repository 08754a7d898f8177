package installment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/payment"
	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
)

// AggregateTypeInstallment is the aggregate type name used in events
const AggregateTypeInstallment = "Installment"

// Installment is one dated obligation of an installment plan. Status is the
// value derived at the last write; read StatusAt for the current one.
type Installment struct {
	shared.BargainAggregateRoot
	Subject        trade.Subject
	SequenceNumber int
	Amount         decimal.Decimal
	DueDate        time.Time
	PaidAmount     decimal.Decimal
	Status         Status
	PaidDate       *time.Time
}

func newInstallment(bargainID uuid.UUID, subject trade.Subject, line Line, asOf time.Time) *Installment {
	inst := &Installment{
		BargainAggregateRoot: shared.NewBargainAggregateRoot(bargainID),
		Subject:              subject,
		SequenceNumber:       line.SequenceNumber,
		Amount:               line.Amount,
		DueDate:              line.DueDate,
		PaidAmount:           decimal.Zero,
	}
	inst.Status = inst.StatusAt(asOf)
	if inst.Status == StatusPaid {
		// nothing is owed on a zero-amount installment
		paid := asOf
		inst.PaidDate = &paid
	}
	inst.AddDomainEvent(NewInstallmentScheduledEvent(inst))
	return inst
}

// StatusAt derives the status as of now
func (i *Installment) StatusAt(now time.Time) Status {
	return DeriveStatus(i.Amount, i.PaidAmount, i.DueDate, now)
}

// IsOverdue reports whether the installment is unpaid and its due date has passed
func (i *Installment) IsOverdue(now time.Time) bool {
	return i.StatusAt(now) == StatusOverdue
}

// IsPaid reports whether the paid amount covers the amount
func (i *Installment) IsPaid() bool {
	return i.PaidAmount.GreaterThanOrEqual(i.Amount)
}

// Outstanding returns what is still owed, never negative
func (i *Installment) Outstanding() decimal.Decimal {
	return decimal.Max(decimal.Zero, i.Amount.Sub(i.PaidAmount))
}

// Overpayment returns how much was paid beyond the amount
func (i *Installment) Overpayment() decimal.Decimal {
	return decimal.Max(decimal.Zero, i.PaidAmount.Sub(i.Amount))
}

// ApplyPayment adds a payment to the installment and re-derives its status.
// Payments beyond the amount are accepted and show up in Overpayment.
func (i *Installment) ApplyPayment(p *payment.Payment, now time.Time) error {
	if p == nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "payment cannot be nil")
	}
	if p.Target != payment.InstallmentTarget(i.ID) {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "payment %s does not belong to installment %s", p.ID, i.ID)
	}
	if p.BargainID != i.BargainID {
		return shared.NewDomainError(shared.CodeInvalidInput, "payment belongs to another bargain")
	}
	if !p.Amount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "payment amount must be positive")
	}

	wasPaid := i.IsPaid()
	i.PaidAmount = i.PaidAmount.Add(p.Amount)
	i.Status = i.StatusAt(now)
	i.Touch(now)
	i.IncrementVersion()

	i.AddDomainEvent(NewInstallmentPaymentReceivedEvent(i, p))
	if !wasPaid && i.IsPaid() {
		paidDate := p.PaymentDate
		i.PaidDate = &paidDate
		i.AddDomainEvent(NewInstallmentPaidEvent(i))
	}
	return nil
}

// Reconcile recomputes the paid amount from the full set of the installment's
// payments and reports whether anything changed.
func (i *Installment) Reconcile(payments []payment.Payment, now time.Time) bool {
	var (
		total    = decimal.Zero
		lastDate time.Time
	)
	for _, p := range payments {
		if p.Target != payment.InstallmentTarget(i.ID) {
			continue
		}
		total = total.Add(p.Amount)
		if p.PaymentDate.After(lastDate) {
			lastDate = p.PaymentDate
		}
	}

	status := DeriveStatus(i.Amount, total, i.DueDate, now)
	if total.Equal(i.PaidAmount) && status == i.Status {
		return false
	}

	i.PaidAmount = total
	i.Status = status
	if status == StatusPaid && i.PaidDate == nil && !lastDate.IsZero() {
		i.PaidDate = &lastDate
	} else if status != StatusPaid {
		i.PaidDate = nil
	}
	i.Touch(now)
	i.IncrementVersion()
	return true
}
