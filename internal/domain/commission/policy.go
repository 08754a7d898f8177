// Package commission computes the fee a bargain keeps on each purchase or sale
// and models where the applicable rate comes from.
package commission

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/shared/valueobject"
)

// Kind is how a policy value is interpreted
type Kind string

const (
	// KindPercentage takes Value percent of the amount
	KindPercentage Kind = "percentage"
	// KindFixed takes Value as an absolute currency amount
	KindFixed Kind = "fixed"
)

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	return k == KindPercentage || k == KindFixed
}

// String returns the string representation
func (k Kind) String() string {
	return string(k)
}

var maxPercentage = decimal.NewFromInt(100)

// Policy is an already-resolved commission rule
type Policy struct {
	Kind  Kind            `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// PercentagePolicy builds a percentage policy
func PercentagePolicy(rate decimal.Decimal) Policy {
	return Policy{Kind: KindPercentage, Value: rate}
}

// FixedPolicy builds a fixed-amount policy
func FixedPolicy(amount decimal.Decimal) Policy {
	return Policy{Kind: KindFixed, Value: amount}
}

// ParsePolicy builds a validated policy from its textual form
func ParsePolicy(kind, value string) (Policy, error) {
	v, err := decimal.NewFromString(value)
	if err != nil {
		return Policy{}, shared.NewDomainErrorf(shared.CodeInvalidPolicy, "invalid commission value %q", value)
	}
	p := Policy{Kind: Kind(kind), Value: v}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate rejects negative values, percentages above 100 and unknown kinds
func (p Policy) Validate() error {
	if !p.Kind.IsValid() {
		return shared.NewDomainErrorf(shared.CodeInvalidPolicy, "unknown commission kind %q", p.Kind)
	}
	if p.Value.IsNegative() {
		return shared.NewDomainErrorf(shared.CodeInvalidPolicy, "commission value cannot be negative: %s", p.Value)
	}
	if p.Kind == KindPercentage && p.Value.GreaterThan(maxPercentage) {
		return shared.NewDomainErrorf(shared.CodeInvalidPolicy, "commission percentage cannot exceed 100: %s", p.Value)
	}
	if p.Kind == KindFixed && !valueobject.HasMinorUnitPrecision(p.Value) {
		return shared.NewDomainErrorf(shared.CodeInvalidPolicy, "fixed commission %s has more than %d decimal places", p.Value, valueobject.MinorUnitPlaces)
	}
	return nil
}

// String renders the policy as "5%" or "50000 fixed"
func (p Policy) String() string {
	if p.Kind == KindPercentage {
		return fmt.Sprintf("%s%%", p.Value)
	}
	return fmt.Sprintf("%s %s", p.Value, p.Kind)
}
