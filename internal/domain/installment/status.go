package installment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/autobargain/backend/internal/domain/shared/calendar"
)

// Status is the payment state of an installment
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusPaid || s == StatusOverdue
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// DeriveStatus is the only source of an installment's status: Paid once the
// paid amount covers the amount, otherwise Overdue when the due date is
// before today's date, otherwise Pending.
func DeriveStatus(amount, paidAmount decimal.Decimal, dueDate, today time.Time) Status {
	if paidAmount.GreaterThanOrEqual(amount) {
		return StatusPaid
	}
	if calendar.Before(dueDate, today) {
		return StatusOverdue
	}
	return StatusPending
}
