package subscription

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/shared"
	"github.com/autobargain/backend/internal/domain/subscription"
)

// PlanPaymentRequest is a subscription fee payment for a plan. It starts a
// subscription or renews the current one.
type PlanPaymentRequest struct {
	Plan            string          `json:"plan" validate:"required,oneof=monthly quarterly yearly"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date" validate:"required"`
	Method          string          `json:"method" validate:"required,oneof=cash bank_transfer cheque online"`
	ReferenceNumber string          `json:"reference_number" validate:"max=100"`
	Notes           string          `json:"notes" validate:"max=1000"`
}

// SubscriptionResponse is a subscription with its term state derived as of the request time
type SubscriptionResponse struct {
	ID            uuid.UUID              `json:"id"`
	BargainID     uuid.UUID              `json:"bargain_id"`
	Plan          subscription.Plan      `json:"plan"`
	StartDate     time.Time              `json:"start_date"`
	EndDate       time.Time              `json:"end_date"`
	Amount        decimal.Decimal        `json:"amount"`
	Suspended     bool                   `json:"suspended"`
	Status        subscription.Status    `json:"status"`
	TermState     subscription.TermState `json:"term_state"`
	DaysRemaining int                    `json:"days_remaining"`
	Version       int                    `json:"version"`
}

// RenewalResponse is the subscription after a fee payment and the payment itself
type RenewalResponse struct {
	Subscription SubscriptionResponse `json:"subscription"`
	PaymentID    uuid.UUID            `json:"payment_id"`
	Amount       decimal.Decimal      `json:"amount"`
	PaymentDate  time.Time            `json:"payment_date"`
}

// SyncResult counts what a status sync did
type SyncResult struct {
	Visited int `json:"visited"`
	Changed int `json:"changed"`
	Failed  int `json:"failed"`
}

// ToSubscriptionResponse converts a subscription, deriving its term state as of now
func ToSubscriptionResponse(s *subscription.Subscription, now time.Time, window int) SubscriptionResponse {
	return SubscriptionResponse{
		ID:            s.ID,
		BargainID:     s.BargainID,
		Plan:          s.Plan,
		StartDate:     s.StartDate,
		EndDate:       s.EndDate,
		Amount:        s.Amount,
		Suspended:     s.Suspended,
		Status:        s.Status,
		TermState:     subscription.DeriveTermStateWithin(s.EndDate, s.Suspended, now, window),
		DaysRemaining: s.DaysRemaining(now),
		Version:       s.Version,
	}
}

// ParseFeeSchedule builds the plan fee table from configured decimal strings
func ParseFeeSchedule(monthly, quarterly, yearly string) (subscription.FeeSchedule, error) {
	raw := map[subscription.Plan]string{
		subscription.PlanMonthly:   monthly,
		subscription.PlanQuarterly: quarterly,
		subscription.PlanYearly:    yearly,
	}
	fees := make(subscription.FeeSchedule, len(raw))
	for plan, value := range raw {
		fee, err := decimal.NewFromString(value)
		if err != nil {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidAmount, "invalid %s fee %q", plan, value)
		}
		fees[plan] = fee
	}
	if err := fees.Validate(); err != nil {
		return nil, err
	}
	return fees, nil
}
