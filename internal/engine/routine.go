package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/mpetrov/tempo/internal/models"
	"github.com/mpetrov/tempo/internal/notify"
	"github.com/mpetrov/tempo/internal/store"
)

// rescheduleThresholdMinutes guards reminder rescheduling on resume: if less
// than this much expected time remains, rescheduling would fire a reminder
// almost immediately, so we skip it.
const rescheduleThresholdMinutes = 5

// RoutineEngine drives a single active routine run: activity sequencing,
// pause/resume, duration accounting, and crash-safe rehydration from the
// session log.
//
// States: Idle (current == nil), Running, Paused. All mutation entry points
// leave the in-memory state consistent with the session log before
// returning.
type RoutineEngine struct {
	store store.Store
	sched notify.Scheduler
	log   Logger
	now   func() time.Time

	current *RunningRoutine
}

// RoutineOption customizes RoutineEngine construction.
type RoutineOption func(*RoutineEngine)

// WithRoutineLogger sets the logger for best-effort failures.
func WithRoutineLogger(l Logger) RoutineOption {
	return func(e *RoutineEngine) { e.log = l }
}

// WithRoutineClock overrides the engine clock, for tests.
func WithRoutineClock(now func() time.Time) RoutineOption {
	return func(e *RoutineEngine) { e.now = now }
}

// NewRoutineEngine creates a routine engine over the given store and
// scheduler.
func NewRoutineEngine(s store.Store, sched notify.Scheduler, opts ...RoutineOption) *RoutineEngine {
	e := &RoutineEngine{
		store: s,
		sched: sched,
		log:   nopLogger{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// runMarkerKey is the settings key persisting a run's start timestamp. The
// marker scopes which sessions belong to the current run of a routine
// versus earlier runs.
func runMarkerKey(routineID string) string {
	return fmt.Sprintf("runningRoutine:%s:startTime", routineID)
}

// Current returns a deep-copy snapshot of the active run, or nil when Idle.
func (e *RoutineEngine) Current() *RunningRoutine {
	return e.current.clone()
}

// Start begins a run of the routine: builds the slot sequence in definition
// order, persists the run-start marker, and opens a running session for the
// first slot. Fails with ErrNotFound for an unknown routine and
// ErrEmptyRoutine for a routine with no items. On failure mid-setup the
// marker is removed and no partial run is published.
func (e *RoutineEngine) Start(ctx context.Context, routineID string) (*RunningRoutine, error) {
	def, err := e.store.GetRoutineWithItems(ctx, routineID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("%w: routine %s", ErrNotFound, routineID)
	}
	if len(def.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyRoutine, def.Name)
	}

	activities := buildSlots(def)
	startAt := e.now()

	if err := e.store.SetSetting(ctx, runMarkerKey(routineID), startAt.UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}

	sess, err := e.createSlotSession(ctx, def.ID, &activities[0], startAt)
	if err != nil {
		// Roll back the marker so a later rehydration does not scope this
		// aborted run.
		if derr := e.store.DeleteSetting(ctx, runMarkerKey(routineID)); derr != nil {
			e.log.Warning("roll back run marker for %s: %v", def.Name, derr)
		}
		return nil, err
	}
	activities[0].StartTime = &sess.StartTime
	activities[0].SessionID = sess.ID

	e.current = &RunningRoutine{
		RoutineID:         def.ID,
		RoutineName:       def.Name,
		RoutineType:       def.Type,
		Activities:        activities,
		CurrentIndex:      0,
		StartTime:         startAt,
		ActivityDurations: make(map[string]int64),
	}
	return e.Current(), nil
}

// Pause freezes the run's clock. No-op when Idle or already paused.
func (e *RoutineEngine) Pause(ctx context.Context) error {
	if e.current == nil || e.current.IsPaused {
		return nil
	}
	now := e.now()
	e.current.IsPaused = true
	e.current.PausedAt = &now

	// Reminders are rescheduled against the post-resume clock.
	slot := e.current.Current()
	if slot.SessionID != "" {
		if err := e.sched.Cancel(ctx, slot.SessionID); err != nil {
			e.log.Warning("cancel reminder for %s: %v", slot.ActivityName, err)
		}
	}
	return nil
}

// Resume unfreezes a paused run, folding the pause interval into the run's
// total paused duration. The current slot's reminder is rescheduled for its
// remaining expected time, but only when meaningfully positive. No-op when
// not paused.
func (e *RoutineEngine) Resume(ctx context.Context) error {
	if e.current == nil || !e.current.IsPaused {
		return nil
	}
	now := e.now()
	r := e.current

	slot := r.Current()
	if r.PausedAt != nil {
		paused := now.Sub(*r.PausedAt)
		if paused < 0 {
			paused = 0
		}
		r.TotalPausedSeconds += int64(paused.Seconds())
		// Shift the slot's in-memory anchor past the pause so the live
		// segment stays continuous: the duration shown right after resume
		// equals the one shown right before pause, however long the pause
		// lasted. The durable session keeps its true start.
		if slot.StartTime != nil {
			shifted := slot.StartTime.Add(paused)
			slot.StartTime = &shifted
		}
	}
	r.IsPaused = false
	r.PausedAt = nil

	if slot.SessionID != "" && slot.ExpectedMinutes > 0 && slot.StartTime != nil {
		elapsedMinutes := int(ElapsedSeconds(*slot.StartTime, now) / 60)
		remaining := slot.ExpectedMinutes - elapsedMinutes
		if remaining > rescheduleThresholdMinutes {
			if err := e.sched.ScheduleWarning(ctx, slot.SessionID, slot.ActivityName, remaining, now); err != nil {
				e.log.Warning("reschedule reminder for %s: %v", slot.ActivityName, err)
			}
		}
	}
	return nil
}

// Next finishes the current activity and advances to the following slot,
// or finishes the run when the sequence is exhausted.
func (e *RoutineEngine) Next(ctx context.Context) error {
	if e.current == nil {
		return fmt.Errorf("%w: no routine is running", ErrNotFound)
	}
	r := e.current
	now := e.now()
	slot := r.Current()

	if err := e.closeSlot(ctx, slot, now); err != nil {
		return err
	}

	// The last activity's "next" is "finish".
	if r.CurrentIndex+1 == len(r.Activities) {
		return e.Stop(ctx)
	}

	next := &r.Activities[r.CurrentIndex+1]
	sess, err := e.createSlotSession(ctx, r.RoutineID, next, now)
	if err != nil {
		return err
	}
	next.StartTime = &sess.StartTime
	next.SessionID = sess.ID
	r.CurrentIndex++
	return nil
}

// Stop ends the run from Running or Paused: closes the open session if any,
// removes the run-start marker, and publishes Idle. No-op when already
// Idle.
func (e *RoutineEngine) Stop(ctx context.Context) error {
	if e.current == nil {
		return nil
	}
	r := e.current
	slot := r.Current()

	if slot.SessionID != "" && slot.EndTime == nil {
		if err := e.closeSlot(ctx, slot, e.now()); err != nil {
			return err
		}
	}

	if err := e.store.DeleteSetting(ctx, runMarkerKey(r.RoutineID)); err != nil {
		e.log.Warning("delete run marker for %s: %v", r.RoutineName, err)
	}

	e.current = nil
	return nil
}

// closeSlot stops the slot's session, cancels its reminder, and folds its
// elapsed seconds into the run's accounting.
func (e *RoutineEngine) closeSlot(ctx context.Context, slot *RoutineActivity, now time.Time) error {
	if slot.SessionID == "" {
		return nil
	}

	if err := e.sched.Cancel(ctx, slot.SessionID); err != nil {
		e.log.Warning("cancel reminder for %s: %v", slot.ActivityName, err)
	}

	stopped, err := e.store.StopSession(ctx, slot.SessionID, now)
	if err != nil {
		return err
	}

	var seconds int64
	if stopped != nil {
		seconds = stopped.DurationSeconds()
	} else if slot.StartTime != nil {
		// Session already closed elsewhere; fall back to the slot's own
		// occurrence window.
		seconds = ElapsedSeconds(*slot.StartTime, now)
	}

	end := now
	slot.EndTime = &end
	e.current.CompletedOccurrencesSeconds += seconds
	e.current.ActivityDurations[slot.Key] += seconds
	return nil
}

// createSlotSession opens a running session for the slot and schedules its
// reminder (best-effort).
func (e *RoutineEngine) createSlotSession(ctx context.Context, routineID string, slot *RoutineActivity, start time.Time) (*models.Session, error) {
	sess := &models.Session{
		ActivityID:   slot.ActivityID,
		ActivityName: slot.ActivityName,
		CategoryID:   slot.CategoryID,
		CategoryName: slot.CategoryName,
		RoutineID:    routineID,
		StartTime:    start,
		IsPlanned:    true,
		Source:       models.SourceRoutine,
	}
	if slot.ExpectedMinutes > 0 {
		m := slot.ExpectedMinutes
		sess.ExpectedDurationMinutes = &m
	}

	if err := e.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	if slot.ExpectedMinutes > 0 {
		if err := e.sched.ScheduleWarning(ctx, sess.ID, slot.ActivityName, slot.ExpectedMinutes, sess.StartTime); err != nil {
			e.log.Warning("schedule reminder for %s: %v", slot.ActivityName, err)
		}
	}
	return sess, nil
}

// buildSlots derives the slot sequence from a routine definition. Items are
// already in display order; the accumulation key is computed once here.
func buildSlots(def *models.Routine) []RoutineActivity {
	slots := make([]RoutineActivity, 0, len(def.Items))
	for _, item := range def.Items {
		slot := RoutineActivity{
			ID:              item.ID,
			ActivityID:      item.ActivityID,
			ExpectedMinutes: item.ExpectedDurationMinutes,
			ScheduledTime:   item.ScheduledTime,
		}
		if item.Activity != nil {
			slot.ActivityName = item.Activity.Name
			slot.CategoryID = item.Activity.CategoryID
			slot.CategoryName = item.Activity.CategoryName
			slot.CategoryColor = item.Activity.CategoryColor
			if slot.ExpectedMinutes <= 0 {
				slot.ExpectedMinutes = item.Activity.DefaultExpectedMinutes
			}
		}
		if slot.ActivityID != "" {
			slot.Key = slot.ActivityID
		} else {
			slot.Key = slot.ActivityName
		}
		slots = append(slots, slot)
	}
	return slots
}
