package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mpetrov/tempo/internal/models"
	"github.com/mpetrov/tempo/internal/notify"
	"github.com/mpetrov/tempo/internal/store"
)

// TimerEngine manages the set of concurrently running ad-hoc and manual
// timers. Each timer is a thin overlay over one running session in the
// session log; the log is the source of truth and Reload re-derives the
// overlay from it.
type TimerEngine struct {
	store store.Store
	sched notify.Scheduler
	idle  IdleMonitor
	log   Logger
	now   func() time.Time

	timers []*RunningTimer
}

// TimerOption customizes TimerEngine construction.
type TimerOption func(*TimerEngine)

// WithIdleMonitor sets the inactivity monitor toggled on timer start/stop.
func WithIdleMonitor(m IdleMonitor) TimerOption {
	return func(e *TimerEngine) { e.idle = m }
}

// WithTimerLogger sets the logger for best-effort failures.
func WithTimerLogger(l Logger) TimerOption {
	return func(e *TimerEngine) { e.log = l }
}

// WithTimerClock overrides the engine clock, for tests.
func WithTimerClock(now func() time.Time) TimerOption {
	return func(e *TimerEngine) { e.now = now }
}

// NewTimerEngine creates a timer engine over the given store and scheduler.
func NewTimerEngine(s store.Store, sched notify.Scheduler, opts ...TimerOption) *TimerEngine {
	e := &TimerEngine{
		store: s,
		sched: sched,
		idle:  nopIdleMonitor{},
		log:   nopLogger{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start creates a running timer for the activity. It fails with ErrConflict
// if a timer with the same activity name (case-insensitive) is already
// running. expectedMinutes of 0 falls back to the activity's default.
func (e *TimerEngine) Start(ctx context.Context, activity *models.Activity, isPlanned bool, expectedMinutes int) (*RunningTimer, error) {
	if t := e.findByName(activity.Name); t != nil {
		return nil, fmt.Errorf("%w: %s", ErrConflict, activity.Name)
	}

	if expectedMinutes <= 0 {
		expectedMinutes = activity.DefaultExpectedMinutes
	}

	sess := &models.Session{
		ActivityID:   activity.ID,
		ActivityName: activity.Name,
		CategoryID:   activity.CategoryID,
		CategoryName: activity.CategoryName,
		StartTime:    e.now(),
		IsPlanned:    isPlanned,
		Source:       models.SourceTimer,
	}
	if expectedMinutes > 0 {
		m := expectedMinutes
		sess.ExpectedDurationMinutes = &m
	}

	if err := e.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	// Side effects after the session exists are best-effort: the session is
	// the record of truth and is never rolled back for them.
	if err := e.store.IncrementActivityUsage(ctx, activity.ID); err != nil {
		e.log.Warning("increment usage for %s: %v", activity.Name, err)
	}
	e.scheduleWarning(ctx, sess.ID, activity.Name, expectedMinutes, sess.StartTime)

	timer := &RunningTimer{
		ID:              uuid.NewString(),
		SessionID:       sess.ID,
		ActivityID:      activity.ID,
		ActivityName:    activity.Name,
		CategoryID:      activity.CategoryID,
		CategoryName:    activity.CategoryName,
		CategoryColor:   activity.CategoryColor,
		StartTime:       sess.StartTime,
		ExpectedMinutes: expectedMinutes,
		IsPlanned:       isPlanned,
	}
	e.timers = append(e.timers, timer)

	// At least one timer is live now.
	e.idle.Stop()

	snapshot := *timer
	return &snapshot, nil
}

// StartManual creates a running timer for an ad-hoc session with no backing
// activity. expectedMinutes is mandatory and must be positive.
func (e *TimerEngine) StartManual(ctx context.Context, name, categoryID, categoryName, categoryColor string, expectedMinutes int, isPlanned bool) (*RunningTimer, error) {
	if expectedMinutes <= 0 {
		return nil, fmt.Errorf("manual timer requires a positive expected duration, got %d", expectedMinutes)
	}
	if t := e.findByName(name); t != nil {
		return nil, fmt.Errorf("%w: %s", ErrConflict, name)
	}

	m := expectedMinutes
	sess := &models.Session{
		ActivityName:            name,
		CategoryID:              categoryID,
		CategoryName:            categoryName,
		StartTime:               e.now(),
		ExpectedDurationMinutes: &m,
		IsPlanned:               isPlanned,
		Source:                  models.SourceManual,
	}
	if err := e.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	e.scheduleWarning(ctx, sess.ID, name, expectedMinutes, sess.StartTime)

	timer := &RunningTimer{
		ID:              uuid.NewString(),
		SessionID:       sess.ID,
		ActivityName:    name,
		CategoryID:      categoryID,
		CategoryName:    categoryName,
		CategoryColor:   categoryColor,
		StartTime:       sess.StartTime,
		ExpectedMinutes: expectedMinutes,
		IsPlanned:       isPlanned,
	}
	e.timers = append(e.timers, timer)
	e.idle.Stop()

	snapshot := *timer
	return &snapshot, nil
}

// Stop stops the timer with the given id, cancelling its reminder and
// closing its backing session. Fails with ErrNotFound for unknown ids.
func (e *TimerEngine) Stop(ctx context.Context, timerID string) (*models.Session, error) {
	idx := -1
	for i, t := range e.timers {
		if t.ID == timerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%w: timer %s", ErrNotFound, timerID)
	}
	timer := e.timers[idx]

	if err := e.sched.Cancel(ctx, timer.SessionID); err != nil {
		e.log.Warning("cancel reminder for %s: %v", timer.ActivityName, err)
	}

	stopped, err := e.store.StopSession(ctx, timer.SessionID, e.now())
	if err != nil {
		return nil, err
	}

	e.timers = append(e.timers[:idx], e.timers[idx+1:]...)
	if len(e.timers) == 0 {
		e.idle.Start()
	}
	return stopped, nil
}

// StopAll stops every running timer, best-effort, and returns how many were
// stopped.
func (e *TimerEngine) StopAll(ctx context.Context) int {
	ids := make([]string, len(e.timers))
	for i, t := range e.timers {
		ids[i] = t.ID
	}

	stopped := 0
	for _, id := range ids {
		if _, err := e.Stop(ctx, id); err != nil {
			e.log.Warning("stop timer %s: %v", id, err)
			continue
		}
		stopped++
	}
	return stopped
}

// Duration returns the timer's elapsed whole seconds, or 0 for an unknown
// id. The UI polls this every second; a timer disappearing between polls
// must not be an error.
func (e *TimerEngine) Duration(timerID string) int64 {
	for _, t := range e.timers {
		if t.ID == timerID {
			return ElapsedSeconds(t.StartTime, e.now())
		}
	}
	return 0
}

// Reload re-derives the running timer set from the session log's running
// sessions. Routine-sourced sessions are represented through the routine
// engine, not duplicated here. This is the only path that recovers timers
// started in a previous process.
func (e *TimerEngine) Reload(ctx context.Context) error {
	running, err := e.store.GetRunningSessions(ctx)
	if err != nil {
		return fmt.Errorf("reload timers: %w", err)
	}

	timers := make([]*RunningTimer, 0, len(running))
	for _, sess := range running {
		if sess.Source == models.SourceRoutine {
			continue
		}
		expected := 0
		if sess.ExpectedDurationMinutes != nil {
			expected = *sess.ExpectedDurationMinutes
		}
		timers = append(timers, &RunningTimer{
			ID:              uuid.NewString(),
			SessionID:       sess.ID,
			ActivityID:      sess.ActivityID,
			ActivityName:    sess.ActivityName,
			CategoryID:      sess.CategoryID,
			CategoryName:    sess.CategoryName,
			StartTime:       sess.StartTime,
			ExpectedMinutes: expected,
			IsPlanned:       sess.IsPlanned,
		})
	}
	e.timers = timers

	if len(e.timers) > 0 {
		e.idle.Stop()
	} else {
		e.idle.Start()
	}
	return nil
}

// Timers returns snapshot copies of the running timer set.
func (e *TimerEngine) Timers() []RunningTimer {
	out := make([]RunningTimer, len(e.timers))
	for i, t := range e.timers {
		out[i] = *t
	}
	return out
}

func (e *TimerEngine) findByName(name string) *RunningTimer {
	for _, t := range e.timers {
		if strings.EqualFold(t.ActivityName, name) {
			return t
		}
	}
	return nil
}

// scheduleWarning is best-effort: a reminder that fails to schedule is
// logged and forgotten, never unwinds a created session.
func (e *TimerEngine) scheduleWarning(ctx context.Context, sessionID, label string, expectedMinutes int, start time.Time) {
	if expectedMinutes <= 0 {
		return
	}
	if err := e.sched.ScheduleWarning(ctx, sessionID, label, expectedMinutes, start); err != nil {
		e.log.Warning("schedule reminder for %s: %v", label, err)
	}
}
