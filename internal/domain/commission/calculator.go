package commission

import (
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/shared/valueobject"
)

// Result is the outcome of applying a policy to an amount
type Result struct {
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	Policy           Policy          `json:"policy"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	NetAmount        decimal.Decimal `json:"net_amount"`
}

// Compute applies policy to originalAmount.
//
// A percentage commission is rounded half-up to the currency minor unit, once.
// A fixed commission is capped at originalAmount so the net amount never goes
// negative. The net amount is always originalAmount minus the commission.
func Compute(originalAmount decimal.Decimal, policy Policy) (Result, error) {
	if err := policy.Validate(); err != nil {
		return Result{}, err
	}
	if originalAmount.IsNegative() {
		return Result{}, shared.NewDomainErrorf(shared.CodeInvalidAmount, "original amount cannot be negative: %s", originalAmount)
	}
	if err := valueobject.CheckMinorUnits("original amount", originalAmount); err != nil {
		return Result{}, err
	}

	original := valueobject.NewMoneyPKR(originalAmount)
	var fee valueobject.Money
	switch policy.Kind {
	case KindPercentage:
		fee = original.Percentage(policy.Value)
	case KindFixed:
		// both sides are PKR, Min cannot fail
		fee, _ = valueobject.NewMoneyPKR(policy.Value).Min(original)
	}
	net, _ := original.Subtract(fee)

	return Result{
		OriginalAmount:   originalAmount,
		Policy:           policy,
		CommissionAmount: fee.Amount(),
		NetAmount:        net.Amount(),
	}, nil
}

// Capped reports whether a fixed fee was reduced to the original amount
func (r Result) Capped() bool {
	return r.Policy.Kind == KindFixed && r.Policy.Value.GreaterThan(r.CommissionAmount)
}
