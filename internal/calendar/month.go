package calendar

import (
	"fmt"
	"time"
)

const (
	// GridColumns is the number of weekday columns, Monday first.
	GridColumns = 7
	// GridRows is enough rows for any month: an offset of at most 6 plus at
	// most 31 days is 37 cells.
	GridRows = 6
	// GridCells is the fixed length of a month grid.
	GridCells = GridColumns * GridRows
)

// MonthDayCell is one cell of the month grid. Padding cells before the first
// and after the last day of the month have a zero DayNumber and a zero Date.
type MonthDayCell struct {
	DayNumber  int
	Date       time.Time
	TaskColors []Color
	IsToday    bool
}

// IsPadding reports whether the cell lies outside the month.
func (c MonthDayCell) IsPadding() bool {
	return c.DayNumber == 0
}

// Key returns the cell's DateKey, or "" for padding.
func (c MonthDayCell) Key() DateKey {
	if c.IsPadding() {
		return ""
	}
	return KeyOf(c.Date)
}

// DaysIn returns the number of days in the month, honoring leap years.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// mondayOffset is how many days d lies after Monday (Monday 0 .. Sunday 6).
func mondayOffset(d time.Weekday) int {
	return (int(d) - int(time.Monday) + 7) % 7
}

func validateMonth(year int, month time.Month) error {
	if month < time.January || month > time.December {
		return fmt.Errorf("%w: month %d outside 1..12", ErrInvalidArgument, int(month))
	}
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: year %d outside 1..9999", ErrInvalidArgument, year)
	}
	return nil
}

// BuildMonthGrid lays out the month as exactly GridCells cells, Monday first.
// Months are 1-based (January is 1). An out of range month or year fails
// with ErrInvalidArgument instead of wrapping into a neighboring month.
func BuildMonthGrid(year int, month time.Month, days DayColors, today time.Time, opts Options) ([]MonthDayCell, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}
	loc := opts.location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := mondayOffset(first.Weekday())
	maxDay := DaysIn(year, month)
	todayKey := KeyIn(today, loc)
	limit := opts.maxColors()

	cells := make([]MonthDayCell, GridCells)
	for i := range cells {
		if i < offset || i >= offset+maxDay {
			continue
		}
		day := i - offset + 1
		date := time.Date(year, month, day, 0, 0, 0, 0, loc)
		key := KeyOf(date)
		cells[i] = MonthDayCell{
			DayNumber:  day,
			Date:       date,
			TaskColors: colorsOn(days, key, limit),
			IsToday:    key == todayKey,
		}
	}
	return cells, nil
}

func colorsOn(days DayColors, key DateKey, limit int) []Color {
	if days == nil {
		return nil
	}
	return days.ColorsOn(key, limit)
}
