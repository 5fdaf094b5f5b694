package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestWeekStart(t *testing.T) {
	testCases := []struct {
		name     string
		ref      time.Time
		expected time.Time
	}{
		{"Monday stays", time.Date(2026, 2, 9, 14, 0, 0, 0, time.UTC), date(t, "2026-02-09")},
		{"Wednesday", time.Date(2026, 2, 11, 8, 30, 0, 0, time.UTC), date(t, "2026-02-09")},
		{"Sunday goes back six days", time.Date(2026, 2, 15, 23, 59, 0, 0, time.UTC), date(t, "2026-02-09")},
		{"Across year boundary", date(t, "2026-01-01"), date(t, "2025-12-29")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := WeekStart(tc.ref)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, time.Monday, got.Weekday())
		})
	}
}

func TestBuildWeekStrip_SevenConsecutiveDays(t *testing.T) {
	starts := []time.Time{date(t, "2026-02-09"), date(t, "2025-12-29"), date(t, "2024-02-26")}
	for _, start := range starts {
		items := BuildWeekStrip(start, nil, date(t, "2000-01-01"), DefaultOptions())
		require.Len(t, items, GridColumns)
		for i, item := range items {
			assert.Equal(t, start.AddDate(0, 0, i), item.Date)
			assert.Equal(t, item.Date.Day(), item.DayNumber)
			assert.False(t, item.Date.IsZero())
		}
		assert.Equal(t, "Mon", items[0].DayName)
		assert.Equal(t, "Sun", items[6].DayName)
	}
}

func TestBuildWeekStrip_NormalizesToMonday(t *testing.T) {
	items := BuildWeekStrip(time.Date(2026, 2, 12, 17, 0, 0, 0, time.UTC), nil, date(t, "2026-02-12"), DefaultOptions())

	require.Len(t, items, 7)
	assert.Equal(t, date(t, "2026-02-09"), items[0].Date)
	assert.True(t, items[3].IsToday)
	assert.False(t, items[0].IsToday)
}

func TestBuildWeekStrip_ColorsAndLabels(t *testing.T) {
	snap := snapshotWith([]testTask{
		{id: "1", due: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC), assignee: "u2"},
		{id: "2", due: time.Date(2026, 2, 10, 19, 0, 0, 0, time.UTC), assignee: "u1"},
	}, ColorMap{"u1": "#000001", "u2": "#000002"})
	opts := DefaultOptions()
	opts.Labels = LabelsFor(language.German)

	items := BuildWeekStrip(date(t, "2026-02-09"), snap, date(t, "2026-02-09"), opts)

	assert.Equal(t, "Mo", items[0].DayName)
	assert.Equal(t, "Di", items[1].DayName)
	assert.Equal(t, "So", items[6].DayName)
	assert.Equal(t, []Color{"#000002", "#000001"}, items[1].TaskColors)
	assert.Empty(t, items[2].TaskColors)
}

func TestMonthCursor(t *testing.T) {
	jan := MonthCursor{Year: 2026, Month: time.January}

	assert.Equal(t, MonthCursor{Year: 2025, Month: time.December}, jan.Adjust(-1))
	assert.Equal(t, MonthCursor{Year: 2026, Month: time.February}, jan.Adjust(1))
	assert.Equal(t, MonthCursor{Year: 2027, Month: time.February}, jan.Adjust(13))
	assert.Equal(t, MonthCursor{Year: 2023, Month: time.December}, jan.Adjust(-25))
	assert.Equal(t, jan, jan.Adjust(0))

	dec := MonthCursor{Year: 2025, Month: time.December}
	assert.Equal(t, MonthCursor{Year: 2025, Month: time.November}, dec.Adjust(-1))

	moved, err := jan.SetMonth(2024, time.February)
	require.NoError(t, err)
	assert.Equal(t, MonthCursor{Year: 2024, Month: time.February}, moved)

	unchanged, err := jan.SetMonth(2024, 13)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, jan, unchanged)

	assert.Equal(t, date(t, "2026-01-01"), jan.First(nil))
	assert.Equal(t, MonthCursor{Year: 2026, Month: time.October}, NewMonthCursor(date(t, "2026-10-18")))
}

func TestWeekCursor(t *testing.T) {
	c := NewWeekCursor(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, date(t, "2025-12-29"), c.Start)
	assert.Equal(t, date(t, "2026-01-04"), c.End())

	assert.Equal(t, date(t, "2026-01-05"), c.Adjust(7).Start)
	assert.Equal(t, date(t, "2025-12-22"), c.Adjust(-7).Start)
	assert.Equal(t, date(t, "2025-12-29"), c.Adjust(3).Start, "Partial weeks snap back to Monday")
}

func TestLabels(t *testing.T) {
	de, err := ParseLabels("de-AT")
	require.NoError(t, err)
	assert.Equal(t, "Februar 2026", de.MonthTitle(2026, time.February))
	assert.Equal(t, "Mi", de.DayName(time.Wednesday))

	en, err := ParseLabels("")
	require.NoError(t, err)
	assert.Equal(t, "December 2025", en.MonthTitle(2025, time.December))
	assert.Equal(t, "09.02. - 15.02.", en.WeekRange(date(t, "2026-02-09")))

	fr := LabelsFor(language.French)
	assert.Equal(t, "Mon", fr.DayName(time.Monday), "Unsupported locales fall back to English")

	_, err = ParseLabels("not a locale!")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
