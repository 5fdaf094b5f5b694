package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/belphemur/haushaltsheld/internal/calendar"
	"github.com/belphemur/haushaltsheld/internal/logging"
	"github.com/belphemur/haushaltsheld/internal/signals"
)

// Registry keeps one Session per group
type Registry struct {
	source  TaskSource
	palette calendar.Palette
	opts    calendar.Options
	now     Clock
	logger  zerolog.Logger

	mu          sync.Mutex
	sessions    map[string]*entry
	listenerKey string
}

// entry is a session plus the outcome of its first load. ready is closed
// once err is set.
type entry struct {
	session *Session
	ready   chan struct{}
	err     error
}

func (e *entry) loaded() bool {
	select {
	case <-e.ready:
		return e.err == nil
	default:
		return false
	}
}

// NewRegistry creates an empty registry
func NewRegistry(source TaskSource, palette calendar.Palette, opts calendar.Options, now Clock) *Registry {
	r := &Registry{
		source:   source,
		palette:  palette,
		opts:     opts,
		now:      now,
		logger:   logging.GetLogger("session-registry"),
		sessions: make(map[string]*entry),
	}
	r.listenerKey = fmt.Sprintf("session-registry-%p", r)
	return r
}

// Session returns the session of groupID, creating and loading it on first use.
// Concurrent callers for a group that is still loading wait for that load and
// share its result.
func (r *Registry) Session(ctx context.Context, groupID string) (*Session, error) {
	r.mu.Lock()
	e, ok := r.sessions[groupID]
	if !ok {
		e = &entry{
			session: New(groupID, r.source, r.palette, r.opts, r.now),
			ready:   make(chan struct{}),
		}
		r.sessions[groupID] = e
	}
	r.mu.Unlock()

	if ok {
		select {
		case <-e.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if e.err != nil {
			return nil, e.err
		}
		return e.session, nil
	}

	e.err = e.session.Refresh(ctx)
	if e.err != nil {
		r.mu.Lock()
		if r.sessions[groupID] == e {
			delete(r.sessions, groupID)
		}
		r.mu.Unlock()
	}
	close(e.ready)
	if e.err != nil {
		return nil, e.err
	}
	r.logger.Debug().Str("group_id", groupID).Msg("Created session")
	return e.session, nil
}

// Lookup returns an existing, loaded session without creating one
func (r *Registry) Lookup(groupID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[groupID]
	if !ok || !e.loaded() {
		return nil, false
	}
	return e.session, true
}

// Forget drops the session of groupID
func (r *Registry) Forget(groupID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, groupID)
}

// GroupIDs lists the groups with a loaded session, sorted
func (r *Registry) GroupIDs() []string {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id, e := range r.sessions {
		if e.loaded() {
			ids = append(ids, id)
		}
	}
	r.mu.Unlock()
	slices.Sort(ids)
	return ids
}

// RefreshAll reloads every live session. A failing group does not stop the
// others; all failures are returned together.
func (r *Registry) RefreshAll(ctx context.Context) error {
	var result *multierror.Error
	refreshed := 0
	for _, id := range r.GroupIDs() {
		s, ok := r.Lookup(id)
		if !ok {
			continue
		}
		if err := s.Refresh(ctx); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		refreshed++
	}
	r.logger.Debug().Int("refreshed", refreshed).Msg("Refreshed sessions")
	return result.ErrorOrNil()
}

// Listen refreshes a group's session whenever its tasks change
func (r *Registry) Listen() {
	signals.OnTasksChanged(r.onTasksChanged, r.listenerKey)
}

// Close stops listening for task changes
func (r *Registry) Close() {
	signals.RemoveTasksChangedListener(r.listenerKey)
}

func (r *Registry) onTasksChanged(ctx context.Context, data signals.TasksChangedData) {
	r.mu.Lock()
	e, ok := r.sessions[data.GroupID]
	r.mu.Unlock()
	if !ok {
		return
	}
	// A change during the first load may not be part of it; reload after.
	<-e.ready
	if e.err != nil {
		return
	}
	if err := e.session.Refresh(context.WithoutCancel(ctx)); err != nil {
		r.logger.Error().Err(err).Str("group_id", data.GroupID).Msg("Failed to refresh session after task change")
		return
	}
	r.logger.Debug().
		Str("group_id", data.GroupID).
		Str("task_id", data.TaskID).
		Msg("Session refreshed after task change")
}
