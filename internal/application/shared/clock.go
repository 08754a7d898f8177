package shared

import (
	"time"

	"github.com/autobargain/backend/internal/domain/shared/calendar"
)

// Clock supplies the current instant and the zone in which "today" is read.
// Due dates and subscription terms are compared against Today.
type Clock struct {
	now      func() time.Time
	location *time.Location
}

// NewClock returns a clock reading time.Now in loc. A nil loc means UTC.
func NewClock(loc *time.Location) Clock {
	return NewFixedClock(time.Now, loc)
}

// NewFixedClock returns a clock driven by now, used by tests and back-dated runs
func NewFixedClock(now func() time.Time, loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{now: now, location: loc}
}

// Now returns the current instant
func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// LocalNow returns the current instant in the clock's zone
func (c Clock) LocalNow() time.Time {
	return c.Now().In(c.Location())
}

// Location returns the zone dates are read in
func (c Clock) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Today returns the current calendar date
func (c Clock) Today() time.Time {
	return c.DateOf(c.Now())
}

// DateOf returns the calendar date of t as read in the clock's zone
func (c Clock) DateOf(t time.Time) time.Time {
	return calendar.Civil(t.In(c.Location()))
}
