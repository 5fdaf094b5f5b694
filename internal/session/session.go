// Package session owns the calendar state of one group: the displayed month,
// the displayed week and the current task snapshot.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/belphemur/haushaltsheld/internal/calendar"
	"github.com/belphemur/haushaltsheld/internal/household"
	"github.com/belphemur/haushaltsheld/internal/logging"
)

// TaskSource loads the tasks of a group
type TaskSource interface {
	ListGroupTasks(ctx context.Context, groupID string) ([]household.Task, error)
}

// Clock returns the current instant
type Clock func() time.Time

// MonthView is a rendered month grid with its heading
type MonthView struct {
	Year     int
	Month    time.Month
	Title    string
	DayNames [7]string
	Cells    []calendar.MonthDayCell
}

// WeekView is a rendered week strip with its heading
type WeekView struct {
	Start time.Time
	End   time.Time
	Title string
	Items []calendar.WeekDayItem
}

// Session holds the calendar state of one group.
// The snapshot is swapped atomically on refresh; the cursors are guarded by mu.
type Session struct {
	groupID string
	source  TaskSource
	palette calendar.Palette
	opts    calendar.Options
	now     Clock
	logger  zerolog.Logger

	snapshot atomic.Pointer[calendar.Snapshot[household.Task]]

	mu    sync.RWMutex
	month calendar.MonthCursor
	week  calendar.WeekCursor
}

// New creates a session for groupID with both cursors on today and an
// empty snapshot. Call Refresh to load tasks.
func New(groupID string, source TaskSource, palette calendar.Palette, opts calendar.Options, now Clock) *Session {
	if now == nil {
		now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Labels.ShortDays[0] == "" {
		opts.Labels = calendar.DefaultOptions().Labels
	}
	today := now().In(opts.Location)
	s := &Session{
		groupID: groupID,
		source:  source,
		palette: palette,
		opts:    opts,
		now:     now,
		logger:  logging.GetLogger("session").With().Str("group_id", groupID).Logger(),
		month:   calendar.NewMonthCursor(today),
		week:    calendar.NewWeekCursor(today),
	}
	s.snapshot.Store(calendar.NewSnapshot[household.Task](nil, palette, opts.Location))
	return s
}

// GroupID returns the group this session belongs to
func (s *Session) GroupID() string {
	return s.groupID
}

// Refresh reloads the group's tasks and replaces the snapshot.
// On error the previous snapshot stays in place.
func (s *Session) Refresh(ctx context.Context) error {
	tasks, err := s.source.ListGroupTasks(ctx, s.groupID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load tasks")
		return fmt.Errorf("failed to refresh group %s: %w", s.groupID, err)
	}
	s.SetTasks(tasks)
	return nil
}

// SetTasks builds a new snapshot from tasks and publishes it.
func (s *Session) SetTasks(tasks []household.Task) {
	snap := calendar.NewSnapshot(tasks, s.palette, s.opts.Location)
	s.snapshot.Store(snap)
	s.logger.Debug().
		Int("tasks", len(tasks)).
		Int("days", snap.Index.Len()).
		Int("assignees", len(snap.Colors)).
		Msg("Task snapshot replaced")
}

// Snapshot returns the current snapshot
func (s *Session) Snapshot() *calendar.Snapshot[household.Task] {
	return s.snapshot.Load()
}

// MonthView builds the grid for the displayed month
func (s *Session) MonthView() (MonthView, error) {
	s.mu.RLock()
	cursor := s.month
	s.mu.RUnlock()
	return s.buildMonth(cursor)
}

// SetDisplayedMonth moves the month cursor to an explicit month
func (s *Session) SetDisplayedMonth(year int, month time.Month) (MonthView, error) {
	s.mu.Lock()
	next, err := s.month.SetMonth(year, month)
	if err != nil {
		s.mu.Unlock()
		return MonthView{}, err
	}
	s.month = next
	s.mu.Unlock()
	return s.buildMonth(next)
}

// AdjustMonth moves the month cursor by delta months
func (s *Session) AdjustMonth(delta int) (MonthView, error) {
	s.mu.Lock()
	moved := s.month.Adjust(delta)
	next, err := s.month.SetMonth(moved.Year, moved.Month)
	if err != nil {
		s.mu.Unlock()
		return MonthView{}, err
	}
	s.month = next
	s.mu.Unlock()
	return s.buildMonth(next)
}

func (s *Session) buildMonth(cursor calendar.MonthCursor) (MonthView, error) {
	cells, err := calendar.BuildMonthGrid(cursor.Year, cursor.Month, s.snapshot.Load(), s.now(), s.opts)
	if err != nil {
		return MonthView{}, err
	}
	return MonthView{
		Year:     cursor.Year,
		Month:    cursor.Month,
		Title:    s.opts.Labels.MonthTitle(cursor.Year, cursor.Month),
		DayNames: s.opts.Labels.ShortDays,
		Cells:    cells,
	}, nil
}

// WeekView builds the strip for the displayed week
func (s *Session) WeekView() WeekView {
	s.mu.RLock()
	cursor := s.week
	s.mu.RUnlock()
	return s.buildWeek(cursor)
}

// SetDisplayedWeek moves the week cursor to the week containing t
func (s *Session) SetDisplayedWeek(t time.Time) WeekView {
	s.mu.Lock()
	s.week = calendar.NewWeekCursor(t.In(s.opts.Location))
	cursor := s.week
	s.mu.Unlock()
	return s.buildWeek(cursor)
}

// AdjustWeek moves the week cursor by deltaDays
func (s *Session) AdjustWeek(deltaDays int) WeekView {
	s.mu.Lock()
	s.week = s.week.Adjust(deltaDays)
	cursor := s.week
	s.mu.Unlock()
	return s.buildWeek(cursor)
}

func (s *Session) buildWeek(cursor calendar.WeekCursor) WeekView {
	return WeekView{
		Start: cursor.Start,
		End:   cursor.End(),
		Title: s.opts.Labels.WeekRange(cursor.Start),
		Items: calendar.BuildWeekStrip(cursor.Start, s.snapshot.Load(), s.now(), s.opts),
	}
}

// TasksOn returns the tasks due on key from the current snapshot
func (s *Session) TasksOn(key calendar.DateKey) []household.Task {
	return s.snapshot.Load().TasksOn(key)
}

// Colors returns the assignee color table of the current snapshot
func (s *Session) Colors() calendar.ColorMap {
	return s.snapshot.Load().Colors
}
