// Package payment models money received against an installment or a
// subscription. Payments are append-only.
package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/shared/valueobject"
)

// Method is how a payment was made
type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodCheque       Method = "cheque"
	MethodOnline       Method = "online"
)

// IsValid checks if the method is known
func (m Method) IsValid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCheque, MethodOnline:
		return true
	}
	return false
}

// String returns the string representation
func (m Method) String() string {
	return string(m)
}

// TargetType is what a payment settles
type TargetType string

const (
	TargetInstallment  TargetType = "installment"
	TargetSubscription TargetType = "subscription"
)

// IsValid checks if the target type is known
func (t TargetType) IsValid() bool {
	return t == TargetInstallment || t == TargetSubscription
}

// Target references the installment or subscription a payment belongs to
type Target struct {
	Type TargetType
	ID   uuid.UUID
}

// InstallmentTarget references an installment
func InstallmentTarget(id uuid.UUID) Target {
	return Target{Type: TargetInstallment, ID: id}
}

// SubscriptionTarget references a subscription
func SubscriptionTarget(id uuid.UUID) Target {
	return Target{Type: TargetSubscription, ID: id}
}

// Validate checks the target has a known type and an id
func (t Target) Validate() error {
	if !t.Type.IsValid() {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "invalid payment target %q", t.Type)
	}
	if t.ID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "payment target id cannot be empty")
	}
	return nil
}

// Details are the caller-supplied facts of a payment
type Details struct {
	Amount          decimal.Decimal
	PaymentDate     time.Time
	Method          Method
	ReferenceNumber string
	Notes           string
}

// Validate checks the amount, date and method
func (d Details) Validate() error {
	if !d.Amount.IsPositive() {
		return shared.NewDomainErrorf(shared.CodeInvalidAmount, "payment amount must be positive, got %s", d.Amount)
	}
	if err := valueobject.CheckMinorUnits("payment amount", d.Amount); err != nil {
		return err
	}
	if d.PaymentDate.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidDate, "payment date is required")
	}
	if !d.Method.IsValid() {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "invalid payment method %q", d.Method)
	}
	return nil
}

// Payment is money received. It is never modified after creation.
type Payment struct {
	shared.BaseEntity
	BargainID       uuid.UUID
	Target          Target
	Amount          decimal.Decimal
	PaymentDate     time.Time
	Method          Method
	ReferenceNumber string
	Notes           string
}

// NewPayment validates and creates a payment
func NewPayment(bargainID uuid.UUID, target Target, details Details) (*Payment, error) {
	if bargainID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "bargain id cannot be empty")
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}
	return &Payment{
		BaseEntity:      shared.NewBaseEntity(),
		BargainID:       bargainID,
		Target:          target,
		Amount:          details.Amount,
		PaymentDate:     details.PaymentDate,
		Method:          details.Method,
		ReferenceNumber: strings.TrimSpace(details.ReferenceNumber),
		Notes:           strings.TrimSpace(details.Notes),
	}, nil
}

// Total sums the amounts of the given payments
func Total(payments []Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}
