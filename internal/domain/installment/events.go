package installment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/payment"
	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
)

const (
	EventTypeInstallmentScheduled       = "InstallmentScheduled"
	EventTypeInstallmentPaymentReceived = "InstallmentPaymentReceived"
	EventTypeInstallmentPaid            = "InstallmentPaid"
)

// InstallmentScheduledEvent is raised for each installment of a new plan
type InstallmentScheduledEvent struct {
	shared.BaseDomainEvent
	Subject        trade.Subject   `json:"subject"`
	SequenceNumber int             `json:"sequence_number"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *InstallmentScheduledEvent) EventType() string {
	return EventTypeInstallmentScheduled
}

// NewInstallmentScheduledEvent creates a new InstallmentScheduledEvent
func NewInstallmentScheduledEvent(i *Installment) *InstallmentScheduledEvent {
	return &InstallmentScheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentScheduled, AggregateTypeInstallment, i.ID, i.BargainID),
		Subject:         i.Subject,
		SequenceNumber:  i.SequenceNumber,
		Amount:          i.Amount,
		DueDate:         i.DueDate,
	}
}

// InstallmentPaymentReceivedEvent is raised for every payment applied to an installment
type InstallmentPaymentReceivedEvent struct {
	shared.BaseDomainEvent
	Subject     trade.Subject   `json:"subject"`
	PaymentID   uuid.UUID       `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      payment.Method  `json:"method"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// EventType returns the event type name
func (e *InstallmentPaymentReceivedEvent) EventType() string {
	return EventTypeInstallmentPaymentReceived
}

// NewInstallmentPaymentReceivedEvent creates a new InstallmentPaymentReceivedEvent
func NewInstallmentPaymentReceivedEvent(i *Installment, p *payment.Payment) *InstallmentPaymentReceivedEvent {
	return &InstallmentPaymentReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentPaymentReceived, AggregateTypeInstallment, i.ID, i.BargainID),
		Subject:         i.Subject,
		PaymentID:       p.ID,
		Amount:          p.Amount,
		Method:          p.Method,
		PaidAmount:      i.PaidAmount,
		Outstanding:     i.Outstanding(),
	}
}

// InstallmentPaidEvent is raised when an installment becomes fully paid
type InstallmentPaidEvent struct {
	shared.BaseDomainEvent
	Subject        trade.Subject   `json:"subject"`
	SequenceNumber int             `json:"sequence_number"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Overpayment    decimal.Decimal `json:"overpayment"`
	PaidDate       time.Time       `json:"paid_date"`
}

// EventType returns the event type name
func (e *InstallmentPaidEvent) EventType() string {
	return EventTypeInstallmentPaid
}

// NewInstallmentPaidEvent creates a new InstallmentPaidEvent
func NewInstallmentPaidEvent(i *Installment) *InstallmentPaidEvent {
	var paidDate time.Time
	if i.PaidDate != nil {
		paidDate = *i.PaidDate
	}
	return &InstallmentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentPaid, AggregateTypeInstallment, i.ID, i.BargainID),
		Subject:         i.Subject,
		SequenceNumber:  i.SequenceNumber,
		PaidAmount:      i.PaidAmount,
		Overpayment:     i.Overpayment(),
		PaidDate:        paidDate,
	}
}
