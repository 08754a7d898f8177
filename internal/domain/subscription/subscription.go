package subscription

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/payment"
	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/shared/calendar"
)

// AggregateTypeSubscription is the aggregate type name used in events
const AggregateTypeSubscription = "Subscription"

// Subscription is a bargain's paid access to the system
type Subscription struct {
	shared.BargainAggregateRoot
	Plan      Plan
	StartDate time.Time
	EndDate   time.Time
	Amount    decimal.Decimal
	Suspended bool
	Status    Status
}

// NewSubscription starts a subscription from its first payment. The term
// starts on the payment date.
func NewSubscription(bargainID uuid.UUID, plan Plan, fees FeeSchedule, details payment.Details, now time.Time) (*Subscription, *payment.Payment, error) {
	if bargainID == uuid.Nil {
		return nil, nil, shared.NewDomainError(shared.CodeInvalidInput, "bargain id cannot be empty")
	}
	s := &Subscription{
		BargainAggregateRoot: shared.NewBargainAggregateRoot(bargainID),
	}
	p, err := s.apply(plan, fees, details)
	if err != nil {
		return nil, nil, err
	}
	s.Status = s.TermState(now).StoredStatus()
	s.AddDomainEvent(NewSubscriptionRenewedEvent(s, p))
	return s, p, nil
}

// Renew restarts the term from a new payment's date and lifts any suspension.
// A payment dated before the current term started is rejected.
func (s *Subscription) Renew(plan Plan, fees FeeSchedule, details payment.Details, now time.Time) (*payment.Payment, error) {
	if !details.PaymentDate.IsZero() && calendar.Before(details.PaymentDate, s.StartDate) {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidDate, "renewal payment date %s is before the current start date %s",
			calendar.Format(details.PaymentDate), calendar.Format(s.StartDate))
	}
	p, err := s.apply(plan, fees, details)
	if err != nil {
		return nil, err
	}
	s.Suspended = false
	s.Status = s.TermState(now).StoredStatus()
	s.Touch(now)
	s.IncrementVersion()
	s.AddDomainEvent(NewSubscriptionRenewedEvent(s, p))
	return p, nil
}

func (s *Subscription) apply(plan Plan, fees FeeSchedule, details payment.Details) (*payment.Payment, error) {
	fee, err := fees.FeeFor(plan)
	if err != nil {
		return nil, err
	}
	p, err := payment.NewPayment(s.BargainID, payment.SubscriptionTarget(s.ID), details)
	if err != nil {
		return nil, err
	}
	if p.Amount.LessThan(fee) {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidAmount, "payment %s is below the %s fee %s", p.Amount, plan, fee)
	}
	end, err := RenewalEndDate(p.PaymentDate, plan)
	if err != nil {
		return nil, err
	}
	s.Plan = plan
	s.StartDate = p.PaymentDate
	s.EndDate = end
	s.Amount = fee
	return p, nil
}

// Suspend blocks the subscription regardless of its end date
func (s *Subscription) Suspend(now time.Time) error {
	if s.Suspended {
		return shared.NewDomainError(shared.CodeInvalidState, "subscription is already suspended")
	}
	s.Suspended = true
	s.Status = StatusInactive
	s.Touch(now)
	s.IncrementVersion()
	s.AddDomainEvent(NewSubscriptionSuspendedEvent(s))
	return nil
}

// Resume lifts a suspension; the term state falls back to the end date rule
func (s *Subscription) Resume(now time.Time) error {
	if !s.Suspended {
		return shared.NewDomainError(shared.CodeInvalidState, "subscription is not suspended")
	}
	s.Suspended = false
	s.Status = s.TermState(now).StoredStatus()
	s.Touch(now)
	s.IncrementVersion()
	return nil
}

// TermState derives the current state with the default expiring-soon window
func (s *Subscription) TermState(now time.Time) TermState {
	return DeriveTermState(s.EndDate, s.Suspended, now)
}

// Sync refreshes the stored status from the derived term state and reports whether it changed
func (s *Subscription) Sync(now time.Time) bool {
	status := s.TermState(now).StoredStatus()
	if status == s.Status {
		return false
	}
	s.Status = status
	s.Touch(now)
	s.IncrementVersion()
	return true
}

// DaysRemaining returns the calendar days left until the end date, negative once expired
func (s *Subscription) DaysRemaining(now time.Time) int {
	return calendar.DaysBetween(now, s.EndDate)
}
