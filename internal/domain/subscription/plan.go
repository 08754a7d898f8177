// Package subscription models what a bargain pays to use the system and how
// long each payment keeps it active.
package subscription

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/shared/calendar"
	"github.com/autobargain/backend/internal/domain/shared/valueobject"
)

// Plan is a billing period
type Plan string

const (
	PlanMonthly   Plan = "monthly"
	PlanQuarterly Plan = "quarterly"
	PlanYearly    Plan = "yearly"
)

var planMonths = map[Plan]int{
	PlanMonthly:   1,
	PlanQuarterly: 3,
	PlanYearly:    12,
}

// IsValid checks if the plan is known
func (p Plan) IsValid() bool {
	_, ok := planMonths[p]
	return ok
}

// Months returns the number of calendar months the plan covers
func (p Plan) Months() int {
	return planMonths[p]
}

// String returns the string representation
func (p Plan) String() string {
	return string(p)
}

// RenewalEndDate returns the day a plan started on start runs out. Month-end
// overflow is clamped the same way installment due dates are.
func RenewalEndDate(start time.Time, plan Plan) (time.Time, error) {
	if !plan.IsValid() {
		return time.Time{}, shared.NewDomainErrorf(shared.CodeInvalidInput, "invalid subscription plan %q", plan)
	}
	if start.IsZero() {
		return time.Time{}, shared.NewDomainError(shared.CodeInvalidDate, "start date is required")
	}
	return calendar.AddMonths(start, plan.Months()), nil
}

// FeeSchedule is the configured price of each plan
type FeeSchedule map[Plan]decimal.Decimal

// FeeFor looks up the fee of a plan
func (f FeeSchedule) FeeFor(plan Plan) (decimal.Decimal, error) {
	fee, ok := f[plan]
	if !ok {
		return decimal.Zero, shared.NewDomainErrorf(shared.CodeInvalidInput, "no fee configured for plan %q", plan)
	}
	return fee, nil
}

// Validate checks every plan has a non-negative fee
func (f FeeSchedule) Validate() error {
	for plan := range planMonths {
		fee, ok := f[plan]
		if !ok {
			return shared.NewDomainErrorf(shared.CodeInvalidInput, "no fee configured for plan %q", plan)
		}
		if fee.IsNegative() {
			return shared.NewDomainErrorf(shared.CodeInvalidAmount, "fee for plan %q cannot be negative", plan)
		}
		if err := valueobject.CheckMinorUnits(fmt.Sprintf("%s fee", plan), fee); err != nil {
			return err
		}
	}
	return nil
}
