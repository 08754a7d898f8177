package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/shared/valueobject"
)

// AggregateTypeTransaction is the aggregate type name used in events
const AggregateTypeTransaction = "Transaction"

// Terms are the agreed figures of a purchase or sale. CommissionAmount is the
// output of the commission calculator for BargainPrice.
type Terms struct {
	Kind              SubjectType
	VehicleID         uuid.UUID
	CustomerID        uuid.UUID
	OriginalPrice     decimal.Decimal
	BargainPrice      decimal.Decimal
	CommissionAmount  decimal.Decimal
	PaymentType       PaymentType
	InstallmentMonths int
	DownPayment       decimal.Decimal
	TransactionDate   time.Time
	Notes             string
}

// Transaction is a purchase of a vehicle into stock or a sale out of it.
// PaidAmount and PendingAmount are reporting totals kept in step with
// installment collections.
type Transaction struct {
	shared.BargainAggregateRoot
	Kind              SubjectType
	VehicleID         uuid.UUID
	CustomerID        uuid.UUID
	OriginalPrice     decimal.Decimal
	BargainPrice      decimal.Decimal
	CommissionAmount  decimal.Decimal
	NetAmount         decimal.Decimal
	PaymentType       PaymentType
	InstallmentMonths int
	DownPayment       decimal.Decimal
	TransactionDate   time.Time
	Notes             string
	Status            TransactionStatus
	PaidAmount        decimal.Decimal
	PendingAmount     decimal.Decimal
	SettledAt         *time.Time
}

// NewTransaction validates the terms and opens a transaction.
// Cash transactions are completed immediately; installment transactions stay
// active with the down payment counted as paid.
func NewTransaction(bargainID uuid.UUID, terms Terms) (*Transaction, error) {
	if err := validateTerms(bargainID, terms); err != nil {
		return nil, err
	}

	net := terms.BargainPrice.Sub(terms.CommissionAmount)
	tx := &Transaction{
		BargainAggregateRoot: shared.NewBargainAggregateRoot(bargainID),
		Kind:                 terms.Kind,
		VehicleID:            terms.VehicleID,
		CustomerID:           terms.CustomerID,
		OriginalPrice:        terms.OriginalPrice,
		BargainPrice:         terms.BargainPrice,
		CommissionAmount:     terms.CommissionAmount,
		NetAmount:            net,
		PaymentType:          terms.PaymentType,
		TransactionDate:      terms.TransactionDate,
		Notes:                strings.TrimSpace(terms.Notes),
	}

	if terms.PaymentType == PaymentTypeCash {
		settled := terms.TransactionDate
		tx.Status = TransactionStatusCompleted
		tx.DownPayment = decimal.Zero
		tx.PaidAmount = net
		tx.PendingAmount = decimal.Zero
		tx.SettledAt = &settled
	} else {
		tx.Status = TransactionStatusActive
		tx.InstallmentMonths = terms.InstallmentMonths
		tx.DownPayment = terms.DownPayment
		tx.PaidAmount = terms.DownPayment
		tx.PendingAmount = net.Sub(terms.DownPayment)
	}

	tx.AddDomainEvent(NewTransactionCreatedEvent(tx))
	return tx, nil
}

func validateTerms(bargainID uuid.UUID, terms Terms) error {
	if bargainID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "bargain id cannot be empty")
	}
	if !terms.Kind.IsValid() {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "invalid transaction kind %q", terms.Kind)
	}
	if terms.VehicleID == uuid.Nil || terms.CustomerID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "vehicle and customer are required")
	}
	if terms.OriginalPrice.IsNegative() || terms.BargainPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "prices cannot be negative")
	}
	if err := valueobject.CheckMinorUnits("original price", terms.OriginalPrice); err != nil {
		return err
	}
	if err := valueobject.CheckMinorUnits("bargain price", terms.BargainPrice); err != nil {
		return err
	}
	if err := valueobject.CheckMinorUnits("down payment", terms.DownPayment); err != nil {
		return err
	}
	if terms.CommissionAmount.IsNegative() || terms.CommissionAmount.GreaterThan(terms.BargainPrice) {
		return shared.NewDomainErrorf(shared.CodeInvalidAmount, "commission %s must be between 0 and the bargain price %s",
			terms.CommissionAmount, terms.BargainPrice)
	}
	if terms.TransactionDate.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidDate, "transaction date is required")
	}
	if !terms.PaymentType.IsValid() {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "invalid payment type %q", terms.PaymentType)
	}
	if terms.PaymentType == PaymentTypeInstallment {
		if terms.InstallmentMonths <= 0 {
			return shared.NewDomainErrorf(shared.CodeInvalidTerm, "installment months must be positive, got %d", terms.InstallmentMonths)
		}
		net := terms.BargainPrice.Sub(terms.CommissionAmount)
		if terms.DownPayment.IsNegative() || terms.DownPayment.GreaterThan(net) {
			return shared.NewDomainErrorf(shared.CodeInvalidTerm, "down payment %s must be between 0 and the net amount %s",
				terms.DownPayment, net)
		}
	}
	return nil
}

// Subject returns the reference commissions and installments use for this transaction
func (t *Transaction) Subject() Subject {
	return Subject{Type: t.Kind, ID: t.ID}
}

// IsSettled returns true when nothing more is expected on the transaction
func (t *Transaction) IsSettled() bool {
	return t.Status == TransactionStatusCompleted
}

// RecordCollection adds a collected installment payment to the paid total.
// Pending never goes below zero; an overpayment shows up as PaidAmount above NetAmount.
// final marks the collection that pays off the last open installment; it
// completes the transaction in the same version.
func (t *Transaction) RecordCollection(amount decimal.Decimal, final bool, at time.Time) error {
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "collected amount must be positive")
	}
	if t.PaymentType != PaymentTypeInstallment {
		return shared.NewDomainError(shared.CodeInvalidState, "cash transactions do not collect installments")
	}
	t.PaidAmount = t.PaidAmount.Add(amount)
	t.PendingAmount = decimal.Max(decimal.Zero, t.NetAmount.Sub(t.PaidAmount))
	if final {
		t.complete(at)
	}
	t.Touch(at)
	t.IncrementVersion()
	return nil
}

// Settle completes an installment transaction once every installment is paid
func (t *Transaction) Settle(at time.Time) error {
	if t.IsSettled() {
		return nil
	}
	t.complete(at)
	t.Touch(at)
	t.IncrementVersion()
	return nil
}

func (t *Transaction) complete(at time.Time) {
	if t.IsSettled() {
		return
	}
	t.Status = TransactionStatusCompleted
	t.SettledAt = &at
	t.AddDomainEvent(NewTransactionSettledEvent(t))
}
