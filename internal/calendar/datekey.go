// Package calendar builds the month grid and week strip shown by the household
// calendar. It is a pure computation package: tasks go in, display cells come
// out. It knows nothing about where tasks are stored or how cells are drawn.
package calendar

import (
	"fmt"
	"time"
)

// DateKeyLayout is the fixed, locale independent layout of a DateKey.
const DateKeyLayout = "2006-01-02"

// DateKey identifies a calendar day as YYYY-MM-DD. Keys sort
// lexicographically in calendar order.
type DateKey string

// KeyOf returns the key of the calendar day t falls on, using t's own location.
// Time of day is ignored.
func KeyOf(t time.Time) DateKey {
	return DateKey(t.Format(DateKeyLayout))
}

// KeyIn converts the instant t into loc before keying it. A nil loc means UTC.
func KeyIn(t time.Time, loc *time.Location) DateKey {
	if loc == nil {
		loc = time.UTC
	}
	return KeyOf(t.In(loc))
}

// ParseDateKey parses a YYYY-MM-DD key into midnight of that day in loc.
func ParseDateKey(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateKeyLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date key %q: %v", ErrInvalidArgument, s, err)
	}
	return t, nil
}

// Time returns midnight of the key's day in loc.
func (k DateKey) Time(loc *time.Location) (time.Time, error) {
	return ParseDateKey(string(k), loc)
}

func (k DateKey) String() string {
	return string(k)
}

// startOfDay clears the time of day, keeping t's location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
