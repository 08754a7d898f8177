package subscription

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/payment"
	"github.com/autobargain/backend/internal/domain/shared"
)

const (
	EventTypeSubscriptionRenewed   = "SubscriptionRenewed"
	EventTypeSubscriptionSuspended = "SubscriptionSuspended"
)

// SubscriptionRenewedEvent is raised when a payment starts a new term
type SubscriptionRenewedEvent struct {
	shared.BaseDomainEvent
	Plan      Plan            `json:"plan"`
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    payment.Method  `json:"method"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
}

// EventType returns the event type name
func (e *SubscriptionRenewedEvent) EventType() string {
	return EventTypeSubscriptionRenewed
}

// NewSubscriptionRenewedEvent creates a new SubscriptionRenewedEvent
func NewSubscriptionRenewedEvent(s *Subscription, p *payment.Payment) *SubscriptionRenewedEvent {
	return &SubscriptionRenewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionRenewed, AggregateTypeSubscription, s.ID, s.BargainID),
		Plan:            s.Plan,
		PaymentID:       p.ID,
		Amount:          p.Amount,
		Method:          p.Method,
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
	}
}

// SubscriptionSuspendedEvent is raised when a subscription is suspended
type SubscriptionSuspendedEvent struct {
	shared.BaseDomainEvent
	EndDate time.Time `json:"end_date"`
}

// EventType returns the event type name
func (e *SubscriptionSuspendedEvent) EventType() string {
	return EventTypeSubscriptionSuspended
}

// NewSubscriptionSuspendedEvent creates a new SubscriptionSuspendedEvent
func NewSubscriptionSuspendedEvent(s *Subscription) *SubscriptionSuspendedEvent {
	return &SubscriptionSuspendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionSuspended, AggregateTypeSubscription, s.ID, s.BargainID),
		EndDate:         s.EndDate,
	}
}
