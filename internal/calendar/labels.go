package calendar

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Labels holds the display strings for one locale. Day names are Monday first.
type Labels struct {
	Tag       language.Tag
	ShortDays [7]string
	Months    [12]string
}

var englishLabels = Labels{
	Tag:       language.English,
	ShortDays: [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
	Months: [12]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
}

var germanLabels = Labels{
	Tag:       language.German,
	ShortDays: [7]string{"Mo", "Di", "Mi", "Do", "Fr", "Sa", "So"},
	Months: [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni",
		"Juli", "August", "September", "Oktober", "November", "Dezember"},
}

var supportedLabels = []Labels{englishLabels, germanLabels}

var labelMatcher = language.NewMatcher([]language.Tag{language.English, language.German})

// LabelsFor picks the closest supported locale for tag, falling back to English.
func LabelsFor(tag language.Tag) Labels {
	_, idx, conf := labelMatcher.Match(tag)
	if conf == language.No {
		return englishLabels
	}
	return supportedLabels[idx]
}

// ParseLabels parses a BCP 47 locale such as "de" or "en-US".
func ParseLabels(locale string) (Labels, error) {
	if locale == "" {
		return englishLabels, nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return Labels{}, fmt.Errorf("%w: locale %q: %v", ErrInvalidArgument, locale, err)
	}
	return LabelsFor(tag), nil
}

// DayName returns the short name of a weekday.
func (l Labels) DayName(d time.Weekday) string {
	return l.ShortDays[mondayOffset(d)]
}

// MonthTitle renders a heading such as "February 2026".
func (l Labels) MonthTitle(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", l.Months[month-1], year)
}

// WeekRange renders the span of a week as "09.02. - 15.02.".
func (l Labels) WeekRange(start time.Time) string {
	end := start.AddDate(0, 0, 6)
	return start.Format("02.01.") + " - " + end.Format("02.01.")
}
