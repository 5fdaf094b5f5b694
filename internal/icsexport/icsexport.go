// Package icsexport publishes a group's tasks as an iCalendar feed so they can
// be subscribed to from any calendar client.
package icsexport

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/belphemur/haushaltsheld/internal/household"
)

// ProductName identifies the feed producer in PRODID and in event UIDs.
const ProductName = "haushaltsheld"

// ContentType is the media type of a serialized feed.
const ContentType = "text/calendar; charset=utf-8"

// UID returns the stable event UID of a task.
func UID(taskID string) string {
	return taskID + "@" + ProductName
}

// Build turns tasks into a calendar of all-day events. Dates are taken in loc
// so an event lands on the same day as its calendar cell.
func Build(group household.Group, tasks []household.Task, loc *time.Location, stamp time.Time) *ics.Calendar {
	if loc == nil {
		loc = time.UTC
	}

	cal := ics.NewCalendarFor(ProductName)
	cal.SetMethod(ics.MethodPublish)
	cal.SetName(group.Name)
	cal.SetXWRCalName(group.Name)

	for _, t := range tasks {
		due := t.Date.In(loc)
		day := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, loc)

		event := cal.AddEvent(UID(t.ID))
		event.SetDtStampTime(stamp)
		if !t.CreatedAt.IsZero() {
			event.SetCreatedTime(t.CreatedAt)
		}
		if !t.UpdatedAt.IsZero() {
			event.SetModifiedAt(t.UpdatedAt)
		}
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary(summary(t))
		if t.Description != "" {
			event.SetDescription(t.Description)
		}
		event.SetTimeTransparency(ics.TransparencyTransparent)
		event.SetStatus(ics.ObjectStatusConfirmed)
		event.AddCategory(string(t.Status))
	}
	return cal
}

// Write serializes the feed of tasks to w.
func Write(w io.Writer, group household.Group, tasks []household.Task, loc *time.Location, stamp time.Time) error {
	if err := Build(group, tasks, loc, stamp).SerializeTo(w); err != nil {
		return fmt.Errorf("failed to serialize calendar: %w", err)
	}
	return nil
}

func summary(t household.Task) string {
	s := t.Title
	if t.AssignedUserName != "" {
		s = fmt.Sprintf("[%s] %s", t.AssignedUserName, s)
	}
	if t.IsCompleted() {
		s = "✓ " + s
	}
	return s
}
