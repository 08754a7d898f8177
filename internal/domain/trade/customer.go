package trade

import (
	"strings"

	"github.com/google/uuid"

	"github.com/autobargain/backend/internal/domain/shared"
)

// Customer is a person or business the bargain buys vehicles from or sells vehicles to
type Customer struct {
	shared.BargainAggregateRoot
	Name    string
	Email   string
	Phone   string
	CNIC    string
	Address string
	Type    CustomerType
}

// NewCustomer creates a customer for a bargain
func NewCustomer(bargainID uuid.UUID, name, phone string, customerType CustomerType) (*Customer, error) {
	if bargainID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "bargain id cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "customer name cannot be empty")
	}
	if !customerType.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "invalid customer type %q", customerType)
	}
	return &Customer{
		BargainAggregateRoot: shared.NewBargainAggregateRoot(bargainID),
		Name:                 name,
		Phone:                strings.TrimSpace(phone),
		Type:                 customerType,
	}, nil
}

// CanTakePart reports whether the customer may be the counterparty of the given transaction kind.
// The bargain buys from sellers and sells to buyers.
func (c *Customer) CanTakePart(kind SubjectType) bool {
	switch kind {
	case SubjectPurchase:
		return c.Type.CanSell()
	case SubjectSale:
		return c.Type.CanBuy()
	}
	return false
}
