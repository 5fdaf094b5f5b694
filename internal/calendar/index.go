package calendar

import (
	"slices"
	"time"
)

// Item is anything with a due instant and an assignee.
type Item interface {
	DueAt() time.Time
	AssigneeID() string
}

// Index groups items by the day they are due.
type Index[T Item] struct {
	loc  *time.Location
	days map[DateKey][]T
}

// NewIndex buckets items by DateKey in loc. Within a day, items keep the
// order they had in the input. Duplicates are kept.
func NewIndex[T Item](items []T, loc *time.Location) *Index[T] {
	if loc == nil {
		loc = time.UTC
	}
	days := make(map[DateKey][]T)
	for _, it := range items {
		key := KeyIn(it.DueAt(), loc)
		days[key] = append(days[key], it)
	}
	return &Index[T]{loc: loc, days: days}
}

// On returns the items due on key.
func (ix *Index[T]) On(key DateKey) []T {
	return ix.days[key]
}

// Keys returns every day holding at least one item, in calendar order.
func (ix *Index[T]) Keys() []DateKey {
	keys := make([]DateKey, 0, len(ix.days))
	for k := range ix.days {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len is the number of distinct days in the index.
func (ix *Index[T]) Len() int {
	return len(ix.days)
}

// Location is the reference calendar the index was keyed in.
func (ix *Index[T]) Location() *time.Location {
	return ix.loc
}

// AssigneeIDs lists the distinct non-empty assignees, in calendar order of
// their first task.
func (ix *Index[T]) AssigneeIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, key := range ix.Keys() {
		for _, it := range ix.days[key] {
			id := it.AssigneeID()
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
