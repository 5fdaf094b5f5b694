package icsexport

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belphemur/haushaltsheld/internal/household"
)

func TestWrite(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	group := household.Group{ID: "g1", Name: "Flat 3B"}
	tasks := []household.Task{
		{
			ID:               "t1",
			Title:            "Vacuum",
			Description:      "Living room",
			AssignedUserName: "Anna",
			// 23:30 UTC is already the next day in Berlin
			Date:   time.Date(2026, time.January, 13, 23, 30, 0, 0, time.UTC),
			Status: household.StatusOpen,
		},
		{
			ID:               "t2",
			Title:            "Dishes",
			AssignedUserName: "Ben",
			Date:             time.Date(2026, time.January, 15, 0, 0, 0, 0, berlin),
			Status:           household.StatusCompleted,
			UpdatedAt:        time.Date(2026, time.January, 15, 18, 0, 0, 0, time.UTC),
		},
	}
	stamp := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, group, tasks, berlin, stamp))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "PRODID:-//haushaltsheld//Golang ICS Library")
	assert.Contains(t, out, "X-WR-CALNAME:Flat 3B")

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, UID("t1"), first.Id())
	assert.Equal(t, "[Anna] Vacuum", first.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "Living room", first.GetProperty(ics.ComponentPropertyDescription).Value)
	assert.Equal(t, "20260114", first.GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20260115", first.GetProperty(ics.ComponentPropertyDtEnd).Value)
	assert.Equal(t, "open", first.GetProperty(ics.ComponentPropertyCategories).Value)

	second := events[1]
	assert.Equal(t, "✓ [Ben] Dishes", second.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "20260115", second.GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Nil(t, second.GetProperty(ics.ComponentPropertyDescription))
	assert.NotNil(t, second.GetProperty(ics.ComponentPropertyLastModified))
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, household.Group{Name: "Empty"}, nil, nil, time.Now()))

	cal, err := ics.ParseCalendar(&buf)
	require.NoError(t, err)
	assert.Empty(t, cal.Events())
}
