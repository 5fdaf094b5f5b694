package calendar

import "time"

// MonthCursor is the month currently on display.
type MonthCursor struct {
	Year  int
	Month time.Month
}

// NewMonthCursor points at the month containing t.
func NewMonthCursor(t time.Time) MonthCursor {
	return MonthCursor{Year: t.Year(), Month: t.Month()}
}

// SetMonth moves the cursor to an explicit month.
func (c MonthCursor) SetMonth(year int, month time.Month) (MonthCursor, error) {
	if err := validateMonth(year, month); err != nil {
		return c, err
	}
	return MonthCursor{Year: year, Month: month}, nil
}

// Adjust moves the cursor by delta whole months, rolling over years.
func (c MonthCursor) Adjust(delta int) MonthCursor {
	first := time.Date(c.Year, c.Month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return MonthCursor{Year: first.Year(), Month: first.Month()}
}

// First returns day 1 of the month in loc.
func (c MonthCursor) First(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, loc)
}

// WeekCursor is the week currently on display. Start is always a Monday.
type WeekCursor struct {
	Start time.Time
}

// NewWeekCursor points at the week containing t.
func NewWeekCursor(t time.Time) WeekCursor {
	return WeekCursor{Start: WeekStart(t)}
}

// Adjust moves the week start by deltaDays, usually plus or minus seven.
// The result is moved back to a Monday.
func (c WeekCursor) Adjust(deltaDays int) WeekCursor {
	return WeekCursor{Start: WeekStart(c.Start.AddDate(0, 0, deltaDays))}
}

// End is the Sunday closing the week.
func (c WeekCursor) End() time.Time {
	return c.Start.AddDate(0, 0, 6)
}
