package commission

import (
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
)

const EventTypeCommissionRecorded = "CommissionRecorded"

// CommissionRecordedEvent is raised when a transaction's commission is written
type CommissionRecordedEvent struct {
	shared.BaseDomainEvent
	Subject          trade.Subject   `json:"subject"`
	Kind             Kind            `json:"kind"`
	Rate             decimal.Decimal `json:"rate"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	NetAmount        decimal.Decimal `json:"net_amount"`
}

// EventType returns the event type name
func (e *CommissionRecordedEvent) EventType() string {
	return EventTypeCommissionRecorded
}

// NewCommissionRecordedEvent creates a new CommissionRecordedEvent
func NewCommissionRecordedEvent(c *Commission) *CommissionRecordedEvent {
	return &CommissionRecordedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCommissionRecorded, AggregateTypeCommission, c.ID, c.BargainID),
		Subject:          c.Subject,
		Kind:             c.Kind,
		Rate:             c.Rate,
		CommissionAmount: c.CommissionAmount,
		NetAmount:        c.NetAmount,
	}
}
