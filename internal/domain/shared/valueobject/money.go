package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/shared"
)

// Currency represents a currency code (ISO 4217)
type Currency string

// PKR is the only currency bargains trade in
const PKR Currency = "PKR"

// MinorUnitPlaces is the number of decimal places of the currency minor unit
const MinorUnitPlaces int32 = 2

var hundred = decimal.NewFromInt(100)

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoneyPKR creates Money in PKR
func NewMoneyPKR(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: PKR}
}

// HasMinorUnitPrecision reports whether amount fits the currency minor unit,
// i.e. it has no digits below the cent
func HasMinorUnitPrecision(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(MinorUnitPlaces))
}

// CheckMinorUnits rejects an amount with digits below the currency minor unit
func CheckMinorUnits(field string, amount decimal.Decimal) error {
	if !HasMinorUnitPrecision(amount) {
		return shared.NewDomainErrorf(shared.CodeInvalidAmount, "%s %s has more than %d decimal places", field, amount, MinorUnitPlaces)
	}
	return nil
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Subtract returns a new Money with the difference
// Returns error if currencies don't match
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Min returns the smaller of the two amounts
func (m Money) Min(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot compare money with different currencies: %s and %s", m.currency, other.currency)
	}
	if other.amount.LessThan(m.amount) {
		return other, nil
	}
	return m, nil
}

// Percentage returns rate percent of the amount, rounded half-up to the minor unit.
// Rounding is applied once, on the final product.
func (m Money) Percentage(rate decimal.Decimal) Money {
	return Money{
		amount:   m.amount.Mul(rate).Div(hundred).Round(MinorUnitPlaces),
		currency: m.currency,
	}
}

// Split divides a non-negative amount into n parts. Every part but the last is
// the quotient floored to the minor unit; the last part absorbs the remainder,
// so the parts always sum to the original amount exactly.
func (m Money) Split(n int) ([]Money, error) {
	if n <= 0 {
		return nil, errors.New("parts must be positive")
	}
	if m.amount.IsNegative() {
		return nil, errors.New("cannot split a negative amount")
	}

	count := decimal.NewFromInt(int64(n))
	per, _ := m.amount.QuoRem(count, MinorUnitPlaces)
	last := m.amount.Sub(per.Mul(decimal.NewFromInt(int64(n - 1))))

	parts := make([]Money, n)
	for i := range n - 1 {
		parts[i] = Money{amount: per, currency: m.currency}
	}
	parts[n-1] = Money{amount: last, currency: m.currency}
	return parts, nil
}
