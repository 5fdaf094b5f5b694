package calendar

import "time"

// WeekDayItem is one day of the week strip.
type WeekDayItem struct {
	Date       time.Time
	DayName    string
	DayNumber  int
	TaskColors []Color
	IsToday    bool
}

// Key returns the item's DateKey.
func (w WeekDayItem) Key() DateKey {
	return KeyOf(w.Date)
}

// WeekStart returns Monday 00:00 of the week containing t, in t's location.
func WeekStart(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, -mondayOffset(t.Weekday()))
}

// BuildWeekStrip returns the seven days starting at start. A start that is
// not a Monday is moved back to the Monday of its week first, so the strip
// is always Monday to Sunday.
func BuildWeekStrip(start time.Time, days DayColors, today time.Time, opts Options) []WeekDayItem {
	loc := opts.location()
	labels := opts.labels()
	monday := WeekStart(start.In(loc))
	todayKey := KeyIn(today, loc)
	limit := opts.maxColors()

	items := make([]WeekDayItem, GridColumns)
	for i := range items {
		date := monday.AddDate(0, 0, i)
		key := KeyOf(date)
		items[i] = WeekDayItem{
			Date:       date,
			DayName:    labels.DayName(date.Weekday()),
			DayNumber:  date.Day(),
			TaskColors: colorsOn(days, key, limit),
			IsToday:    key == todayKey,
		}
	}
	return items
}
