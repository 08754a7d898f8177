package commission

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/trade"
)

// AggregateTypeCommission is the aggregate type name used in events
const AggregateTypeCommission = "Commission"

// Commission is the fee recorded against one purchase or sale. It is written
// once when the transaction is created and never revised.
type Commission struct {
	shared.BargainAggregateRoot
	Subject          trade.Subject
	OriginalAmount   decimal.Decimal
	Kind             Kind
	Rate             decimal.Decimal
	CommissionAmount decimal.Decimal
	NetAmount        decimal.Decimal
	TransactionDate  time.Time
}

// NewCommission records a computed result against its transaction
func NewCommission(bargainID uuid.UUID, subject trade.Subject, result Result, transactionDate time.Time) (*Commission, error) {
	if bargainID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "bargain id cannot be empty")
	}
	if err := subject.Validate(); err != nil {
		return nil, err
	}
	if transactionDate.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidDate, "transaction date is required")
	}

	c := &Commission{
		BargainAggregateRoot: shared.NewBargainAggregateRoot(bargainID),
		Subject:              subject,
		OriginalAmount:       result.OriginalAmount,
		Kind:                 result.Policy.Kind,
		Rate:                 result.Policy.Value,
		CommissionAmount:     result.CommissionAmount,
		NetAmount:            result.NetAmount,
		TransactionDate:      transactionDate,
	}
	c.AddDomainEvent(NewCommissionRecordedEvent(c))
	return c, nil
}

// Type returns whether this is a purchase or a sale commission
func (c *Commission) Type() trade.SubjectType {
	return c.Subject.Type
}
