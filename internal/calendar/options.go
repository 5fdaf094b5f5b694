package calendar

import "time"

// DefaultMaxColorsPerDay caps the dots drawn in one cell.
const DefaultMaxColorsPerDay = 5

// Options are the fixed inputs shared by the month and week builders.
type Options struct {
	// Location is the reference calendar. Task instants and "today" are
	// converted into it before keying. Nil means UTC.
	Location        *time.Location
	MaxColorsPerDay int
	Labels          Labels
}

// DefaultOptions uses UTC, five dots per day and English labels.
func DefaultOptions() Options {
	return Options{
		Location:        time.UTC,
		MaxColorsPerDay: DefaultMaxColorsPerDay,
		Labels:          englishLabels,
	}
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o Options) labels() Labels {
	if o.Labels.ShortDays[0] == "" {
		return englishLabels
	}
	return o.Labels
}

func (o Options) maxColors() int {
	if o.MaxColorsPerDay <= 0 {
		return DefaultMaxColorsPerDay
	}
	return o.MaxColorsPerDay
}
