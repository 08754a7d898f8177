package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/shared"
)

const (
	EventTypeTransactionCreated = "TransactionCreated"
	EventTypeTransactionSettled = "TransactionSettled"
)

// TransactionCreatedEvent is raised when a purchase or sale is recorded
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	Kind             SubjectType     `json:"kind"`
	VehicleID        uuid.UUID       `json:"vehicle_id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	BargainPrice     decimal.Decimal `json:"bargain_price"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	PaymentType      PaymentType     `json:"payment_type"`
}

// EventType returns the event type name
func (e *TransactionCreatedEvent) EventType() string {
	return EventTypeTransactionCreated
}

// NewTransactionCreatedEvent creates a new TransactionCreatedEvent
func NewTransactionCreatedEvent(t *Transaction) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeTransactionCreated, AggregateTypeTransaction, t.ID, t.BargainID),
		Kind:             t.Kind,
		VehicleID:        t.VehicleID,
		CustomerID:       t.CustomerID,
		BargainPrice:     t.BargainPrice,
		CommissionAmount: t.CommissionAmount,
		NetAmount:        t.NetAmount,
		PaymentType:      t.PaymentType,
	}
}

// TransactionSettledEvent is raised when the last installment of a transaction is paid
type TransactionSettledEvent struct {
	shared.BaseDomainEvent
	Kind       SubjectType     `json:"kind"`
	NetAmount  decimal.Decimal `json:"net_amount"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	SettledAt  time.Time       `json:"settled_at"`
}

// EventType returns the event type name
func (e *TransactionSettledEvent) EventType() string {
	return EventTypeTransactionSettled
}

// NewTransactionSettledEvent creates a new TransactionSettledEvent
func NewTransactionSettledEvent(t *Transaction) *TransactionSettledEvent {
	settledAt := t.UpdatedAt
	if t.SettledAt != nil {
		settledAt = *t.SettledAt
	}
	return &TransactionSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionSettled, AggregateTypeTransaction, t.ID, t.BargainID),
		Kind:            t.Kind,
		NetAmount:       t.NetAmount,
		PaidAmount:      t.PaidAmount,
		SettledAt:       settledAt,
	}
}
