// Package calendar provides the date-only arithmetic shared by installment
// due dates and subscription terms.
package calendar

import (
	"time"

	"github.com/autobargain/backend/internal/domain/shared"
)

// DateLayout is the wire and CLI format for calendar dates
const DateLayout = "2006-01-02"

// DateOf truncates t to midnight in its own location
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddMonths advances t by n calendar months. The day of month is kept when the
// target month has it and clamped to the month's last day otherwise, so
// Jan 31 + 1 month is Feb 28 (or 29). time.AddDate would normalise into March.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := DaysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Civil returns t's calendar date, as read in t's location, at midnight UTC.
// Dates are stored and compared in this form.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Before reports whether the calendar date a falls strictly before the
// calendar date of b, read in b's location.
func Before(a, b time.Time) bool {
	return DaysBetween(b, a) < 0
}

// DaysBetween returns the number of calendar days from 'from', read in its own
// location, to the stored date 'to'. It is negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// Parse reads a YYYY-MM-DD date in UTC
func Parse(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, shared.NewDomainErrorf(shared.CodeInvalidDate, "invalid date %q: expected %s", value, DateLayout)
	}
	return t, nil
}

// Format renders t as YYYY-MM-DD
func Format(t time.Time) string {
	return t.Format(DateLayout)
}
