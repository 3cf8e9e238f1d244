package core

import (
	"time"
)

// Timestamp represents a point in time with timezone awareness
type Timestamp time.Time

// NewTimestamp creates a new timestamp from time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// IsZero checks if the timestamp is zero
func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// Before returns true if t is before u
func (t Timestamp) Before(u Timestamp) bool {
	return time.Time(t).Before(time.Time(u))
}

// After returns true if t is after u
func (t Timestamp) After(u Timestamp) bool {
	return time.Time(t).After(time.Time(u))
}

// JSON marshaling for Timestamp
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm)
	return nil
}

// DateOf truncates a time to its calendar date (midnight UTC).
// All calendar-day arithmetic in the engine goes through DateOf/DayNumber
// so that windows count days, not 24h intervals across DST shifts.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayNumber returns the calendar-day ordinal of t (days since the Unix epoch).
// Two timestamps on the same calendar date share a day number regardless of
// their clock time.
func DayNumber(t time.Time) int {
	d := DateOf(t)
	return int(d.Unix() / 86400)
}

// DaysBetween returns the calendar-day distance from a to b (b − a in days).
func DaysBetween(a, b time.Time) int {
	return DayNumber(b) - DayNumber(a)
}
