// Package scheduler runs the periodic calendar refresh.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/belphemur/haushaltsheld/internal/logging"
)

// DefaultSchedule reloads every live session every five minutes.
const DefaultSchedule = "@every 5m"

// Target is refreshed on every tick
type Target interface {
	RefreshAll(ctx context.Context) error
}

// Refresher calls Target.RefreshAll on a cron schedule
type Refresher struct {
	cron    *cron.Cron
	target  Target
	spec    string
	entryID cron.EntryID
	logger  zerolog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a refresher for spec, a standard five field cron expression or
// a descriptor such as "@every 5m", evaluated in loc.
func New(spec string, loc *time.Location, target Target) (*Refresher, error) {
	if loc == nil {
		loc = time.UTC
	}
	logger := logging.GetLogger("scheduler")
	cronLogger := cronLogAdapter{logger: logger}

	r := &Refresher{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		target: target,
		spec:   spec,
		logger: logger,
		ctx:    context.Background(),
	}

	id, err := r.cron.AddFunc(spec, r.tick)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	r.entryID = id
	return r, nil
}

// Start begins running the schedule. Ticks use a context derived from ctx.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	r.cron.Start()
	r.logger.Info().
		Str("schedule", r.spec).
		Time("next_run", r.Next()).
		Msg("Refresh scheduler started")
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	<-r.cron.Stop().Done()
	r.logger.Info().Msg("Refresh scheduler stopped")
}

// RunOnce refreshes immediately, outside the schedule.
func (r *Refresher) RunOnce(ctx context.Context) error {
	start := time.Now()
	if err := r.target.RefreshAll(ctx); err != nil {
		r.logger.Error().Err(err).Msg("Scheduled refresh failed")
		return err
	}
	r.logger.Debug().Dur("duration", time.Since(start)).Msg("Scheduled refresh done")
	return nil
}

// Next is the time of the next scheduled refresh, zero before Start.
func (r *Refresher) Next() time.Time {
	return r.cron.Entry(r.entryID).Next
}

func (r *Refresher) tick() {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()
	_ = r.RunOnce(ctx)
}

// cronLogAdapter routes cron's own logging to zerolog
type cronLogAdapter struct {
	logger zerolog.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
