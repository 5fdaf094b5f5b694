package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belphemur/haushaltsheld/internal/calendar"
	"github.com/belphemur/haushaltsheld/internal/household"
	"github.com/belphemur/haushaltsheld/internal/signals"
)

type fakeSource struct {
	mu    sync.Mutex
	tasks map[string][]household.Task
	err   error
	calls int
}

func (f *fakeSource) ListGroupTasks(_ context.Context, groupID string) ([]household.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tasks[groupID], nil
}

func (f *fakeSource) set(groupID string, tasks ...household.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tasks == nil {
		f.tasks = map[string][]household.Task{}
	}
	f.tasks[groupID] = tasks
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func task(id, assignee string, due time.Time) household.Task {
	return household.Task{ID: id, GroupID: "g1", Title: id, AssignedUserID: assignee, Date: due, Status: household.StatusOpen}
}

var today = time.Date(2026, time.January, 14, 10, 0, 0, 0, time.UTC)

func TestNewSessionStartsOnToday(t *testing.T) {
	s := New("g1", &fakeSource{}, calendar.DefaultPalette(), calendar.DefaultOptions(), fixedClock(today))

	month, err := s.MonthView()
	require.NoError(t, err)
	assert.Equal(t, 2026, month.Year)
	assert.Equal(t, time.January, month.Month)
	assert.Equal(t, "January 2026", month.Title)
	assert.Len(t, month.Cells, calendar.GridCells)
	assert.Equal(t, "Mon", month.DayNames[0])

	week := s.WeekView()
	assert.Equal(t, time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC), week.Start)
	assert.Equal(t, time.Date(2026, time.January, 18, 0, 0, 0, 0, time.UTC), week.End)
	assert.Equal(t, "12.01. - 18.01.", week.Title)
	require.Len(t, week.Items, 7)
	assert.True(t, week.Items[2].IsToday)
}

func TestAdjustMonthRollsOverYear(t *testing.T) {
	s := New("g1", &fakeSource{}, calendar.DefaultPalette(), calendar.DefaultOptions(), fixedClock(today))

	view, err := s.AdjustMonth(-1)
	require.NoError(t, err)
	assert.Equal(t, 2025, view.Year)
	assert.Equal(t, time.December, view.Month)

	view, err = s.AdjustMonth(-1)
	require.NoError(t, err)
	assert.Equal(t, time.November, view.Month)

	view, err = s.AdjustMonth(14)
	require.NoError(t, err)
	assert.Equal(t, 2027, view.Year)
	assert.Equal(t, time.January, view.Month)

	again, err := s.MonthView()
	require.NoError(t, err)
	assert.Equal(t, view.Title, again.Title)
}

func TestAdjustMonthOutOfRangeKeepsCursor(t *testing.T) {
	s := New("g1", &fakeSource{}, calendar.DefaultPalette(), calendar.DefaultOptions(), fixedClock(today))

	_, err := s.AdjustMonth(-36000)
	assert.ErrorIs(t, err, calendar.ErrInvalidArgument)
	_, err = s.AdjustMonth(12 * 8000)
	assert.ErrorIs(t, err, calendar.ErrInvalidArgument)

	current, err := s.MonthView()
	require.NoError(t, err)
	assert.Equal(t, 2026, current.Year)
	assert.Equal(t, time.January, current.Month)

	view, err := s.AdjustMonth(1)
	require.NoError(t, err)
	assert.Equal(t, time.February, view.Month)
}

func TestSetDisplayedMonth(t *testing.T) {
	s := New("g1", &fakeSource{}, calendar.DefaultPalette(), calendar.DefaultOptions(), fixedClock(today))

	view, err := s.SetDisplayedMonth(2026, time.February)
	require.NoError(t, err)
	assert.Equal(t, "February 2026", view.Title)
	assert.True(t, view.Cells[5].IsPadding())
	assert.Equal(t, 1, view.Cells[6].DayNumber)

	_, err = s.SetDisplayedMonth(2026, 13)
	assert.ErrorIs(t, err, calendar.ErrInvalidArgument)

	current, err := s.MonthView()
	require.NoError(t, err)
	assert.Equal(t, time.February, current.Month, "cursor unchanged after invalid month")
}

func TestWeekNavigation(t *testing.T) {
	s := New("g1", &fakeSource{}, calendar.DefaultPalette(), calendar.DefaultOptions(), fixedClock(today))

	view := s.AdjustWeek(-7)
	assert.Equal(t, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), view.Start)

	view = s.AdjustWeek(-7)
	assert.Equal(t, time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC), view.Start)
	assert.Equal(t, "29.12. - 04.01.", view.Title)

	view = s.SetDisplayedWeek(time.Date(2026, time.February, 11, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, time.February, 9, 0, 0, 0, 0, time.UTC), view.Start)
	assert.Equal(t, time.Monday, view.Start.Weekday())
}

func TestRefreshPublishesSnapshot(t *testing.T) {
	src := &fakeSource{}
	palette := calendar.DefaultPalette()
	s := New("g1", src, palette, calendar.DefaultOptions(), fixedClock(today))

	due := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	src.set("g1", task("t1", "u1", due), task("t2", "u2", due), task("t3", "", due))

	before := s.Snapshot()
	require.NoError(t, s.Refresh(context.Background()))
	after := s.Snapshot()
	assert.NotSame(t, before, after)
	assert.Equal(t, 0, before.Index.Len(), "old snapshot is left untouched")

	assert.Len(t, s.TasksOn("2026-01-15"), 3)
	assert.Equal(t, palette.ColorFor("u1"), s.Colors().Lookup("u1"))
	assert.Equal(t, calendar.NoColor, s.Colors().Lookup(""))

	week := s.WeekView()
	assert.NotEmpty(t, week.Items[3].TaskColors)
	assert.LessOrEqual(t, len(week.Items[3].TaskColors), 2)
}

func TestRefreshKeepsSnapshotOnError(t *testing.T) {
	src := &fakeSource{}
	s := New("g1", src, calendar.DefaultPalette(), calendar.DefaultOptions(), fixedClock(today))
	src.set("g1", task("t1", "u1", today))
	require.NoError(t, s.Refresh(context.Background()))

	src.err = errors.New("store down")
	assert.Error(t, s.Refresh(context.Background()))
	assert.Len(t, s.TasksOn(calendar.KeyOf(today)), 1)
}

func TestConcurrentReadsDuringRefresh(t *testing.T) {
	src := &fakeSource{}
	s := New("g1", src, calendar.DefaultPalette(), calendar.DefaultOptions(), fixedClock(today))
	src.set("g1", task("t1", "u1", today), task("t2", "u2", today))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Refresh(context.Background())
		}()
		go func(delta int) {
			defer wg.Done()
			view, err := s.AdjustMonth(delta%3 - 1)
			assert.NoError(t, err)
			assert.Len(t, view.Cells, calendar.GridCells)
			assert.Len(t, s.AdjustWeek(7).Items, 7)
		}(i)
	}
	wg.Wait()
}

func TestRegistry(t *testing.T) {
	src := &fakeSource{}
	src.set("g1", task("t1", "u1", today))
	r := NewRegistry(src, calendar.DefaultPalette(), calendar.DefaultOptions(), fixedClock(today))
	ctx := context.Background()

	s1, err := r.Session(ctx, "g1")
	require.NoError(t, err)
	s1again, err := r.Session(ctx, "g1")
	require.NoError(t, err)
	assert.Same(t, s1, s1again)
	assert.Len(t, s1.TasksOn(calendar.KeyOf(today)), 1)

	_, err = r.Session(ctx, "g2")
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2"}, r.GroupIDs())

	src.set("g1", task("t1", "u1", today), task("t2", "u2", today))
	require.NoError(t, r.RefreshAll(ctx))
	assert.Len(t, s1.TasksOn(calendar.KeyOf(today)), 2)

	src.err = errors.New("boom")
	err = r.RefreshAll(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors occurred")

	_, err = r.Session(ctx, "g3")
	assert.Error(t, err)
	_, ok := r.Lookup("g3")
	assert.False(t, ok, "failed session is not kept")
}

func TestRegistryRefreshesOnTasksChanged(t *testing.T) {
	src := &fakeSource{}
	r := NewRegistry(src, calendar.DefaultPalette(), calendar.DefaultOptions(), fixedClock(today))
	r.Listen()
	t.Cleanup(r.Close)

	s, err := r.Session(context.Background(), "g1")
	require.NoError(t, err)
	assert.Empty(t, s.TasksOn(calendar.KeyOf(today)))

	src.set("g1", task("t1", "u1", today))
	signals.EmitTasksChanged(context.Background(), "g1", "t1")

	assert.Eventually(t, func() bool {
		return len(s.TasksOn(calendar.KeyOf(today))) == 1
	}, time.Second, 10*time.Millisecond)

	callsBefore := func() int { src.mu.Lock(); defer src.mu.Unlock(); return src.calls }()
	signals.EmitTasksChanged(context.Background(), "unknown", "t9")
	time.Sleep(20 * time.Millisecond)
	callsAfter := func() int { src.mu.Lock(); defer src.mu.Unlock(); return src.calls }()
	assert.Equal(t, callsBefore, callsAfter, "groups without a session are ignored")
}

// gatedSource blocks ListGroupTasks until release is closed.
type gatedSource struct {
	fakeSource
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedSource() *gatedSource {
	return &gatedSource{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedSource) ListGroupTasks(ctx context.Context, groupID string) ([]household.Task, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.fakeSource.ListGroupTasks(ctx, groupID)
}

type sessionResult struct {
	session *Session
	err     error
}

func TestRegistryConcurrentFirstUseWaitsForLoad(t *testing.T) {
	src := newGatedSource()
	src.set("g1", task("t1", "u1", today))
	r := NewRegistry(src, calendar.DefaultPalette(), calendar.DefaultOptions(), fixedClock(today))
	ctx := context.Background()

	first := make(chan sessionResult, 1)
	go func() {
		s, err := r.Session(ctx, "g1")
		first <- sessionResult{s, err}
	}()
	<-src.entered

	second := make(chan sessionResult, 1)
	go func() {
		s, err := r.Session(ctx, "g1")
		second <- sessionResult{s, err}
	}()

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, second, "second caller returns before the first load finished")
	_, ok := r.Lookup("g1")
	assert.False(t, ok, "loading session is not visible")
	assert.Empty(t, r.GroupIDs())

	close(src.release)
	a := <-first
	b := <-second
	require.NoError(t, a.err)
	require.NoError(t, b.err)
	assert.Same(t, a.session, b.session)
	assert.Len(t, b.session.TasksOn(calendar.KeyOf(today)), 1)
	assert.Equal(t, 1, src.calls, "tasks loaded once")
}

func TestRegistryConcurrentFirstUseSharesError(t *testing.T) {
	src := newGatedSource()
	src.err = errors.New("store down")
	r := NewRegistry(src, calendar.DefaultPalette(), calendar.DefaultOptions(), fixedClock(today))
	ctx := context.Background()

	first := make(chan sessionResult, 1)
	go func() {
		s, err := r.Session(ctx, "g1")
		first <- sessionResult{s, err}
	}()
	<-src.entered

	second := make(chan sessionResult, 1)
	go func() {
		s, err := r.Session(ctx, "g1")
		second <- sessionResult{s, err}
	}()
	time.Sleep(20 * time.Millisecond)

	close(src.release)
	a := <-first
	b := <-second
	assert.Error(t, a.err)
	assert.Error(t, b.err)
	assert.Nil(t, b.session)
	_, ok := r.Lookup("g1")
	assert.False(t, ok)

	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()
	s, err := r.Session(ctx, "g1")
	require.NoError(t, err)
	assert.NotNil(t, s)
}
