package subscription

import (
	"time"

	"github.com/autobargain/backend/internal/domain/shared/calendar"
)

// Status is the stored subscription status
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusExpired  Status = "expired"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive || s == StatusExpired
}

// TermState is the subscription state derived from its end date and suspension flag
type TermState string

const (
	TermActive       TermState = "active"
	TermExpiringSoon TermState = "expiring_soon"
	TermExpired      TermState = "expired"
	TermSuspended    TermState = "suspended"
)

// DefaultExpiringSoonDays is how close to the end date a subscription counts as expiring soon
const DefaultExpiringSoonDays = 7

// DeriveTermState derives the term state with the default expiring-soon window
func DeriveTermState(endDate time.Time, suspended bool, today time.Time) TermState {
	return DeriveTermStateWithin(endDate, suspended, today, DefaultExpiringSoonDays)
}

// DeriveTermStateWithin derives the term state. Suspension overrides
// everything; past the end date the term is expired; within window days of the
// end date it is expiring soon.
func DeriveTermStateWithin(endDate time.Time, suspended bool, today time.Time, window int) TermState {
	if suspended {
		return TermSuspended
	}
	remaining := calendar.DaysBetween(today, endDate)
	switch {
	case remaining < 0:
		return TermExpired
	case remaining <= window:
		return TermExpiringSoon
	default:
		return TermActive
	}
}

// StoredStatus maps a term state to the persisted status
func (s TermState) StoredStatus() Status {
	switch s {
	case TermSuspended:
		return StatusInactive
	case TermExpired:
		return StatusExpired
	default:
		return StatusActive
	}
}
