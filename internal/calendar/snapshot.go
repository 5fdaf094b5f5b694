package calendar

import (
	"slices"
	"time"
)

// DayColors resolves the dot colors for a day.
type DayColors interface {
	ColorsOn(key DateKey, limit int) []Color
}

// Snapshot is one loaded task set: its day index and the color table built
// from it. A Snapshot is never mutated; a refresh builds a new one.
type Snapshot[T Item] struct {
	Index    *Index[T]
	Colors   ColorMap
	LoadedAt time.Time
}

// NewSnapshot indexes items and assigns colors to their assignees.
func NewSnapshot[T Item](items []T, palette Palette, loc *time.Location) *Snapshot[T] {
	ix := NewIndex(items, loc)
	return &Snapshot[T]{
		Index:    ix,
		Colors:   palette.BuildColorMap(ix.AssigneeIDs()),
		LoadedAt: time.Now(),
	}
}

// ColorsOn returns up to limit distinct colors for the day, in the order the
// assignees first appear. Unassigned tasks and users without a color add
// nothing. A limit <= 0 means no limit.
func (s *Snapshot[T]) ColorsOn(key DateKey, limit int) []Color {
	if s == nil || s.Index == nil {
		return nil
	}
	var colors []Color
	for _, it := range s.Index.On(key) {
		id := it.AssigneeID()
		if id == "" {
			continue
		}
		c := s.Colors.Lookup(id)
		if c == NoColor {
			continue
		}
		if slices.Contains(colors, c) {
			continue
		}
		colors = append(colors, c)
		if limit > 0 && len(colors) == limit {
			break
		}
	}
	return colors
}

// TasksOn returns the tasks due on key.
func (s *Snapshot[T]) TasksOn(key DateKey) []T {
	if s == nil || s.Index == nil {
		return nil
	}
	return s.Index.On(key)
}

