package engine

import (
	"time"

	"github.com/mpetrov/tempo/internal/models"
)

// RunningTimer is the ephemeral overlay for one running ad-hoc or manual
// session. It is keyed by a locally generated id, carries the denormalized
// display fields the UI needs, and is always reconstructible from the
// session log's running sessions.
type RunningTimer struct {
	ID              string
	SessionID       string
	ActivityID      string
	ActivityName    string
	CategoryID      string
	CategoryName    string
	CategoryColor   string
	StartTime       time.Time
	ExpectedMinutes int
	IsPlanned       bool
}

// RoutineActivity is one slot in the ordered sequence of a routine run. The
// occurrence fields (StartTime, EndTime, SessionID) describe the most recent
// occurrence of this slot in the current run.
type RoutineActivity struct {
	ID            string // routine-item id
	ActivityID    string
	ActivityName  string
	CategoryID    string
	CategoryName  string
	CategoryColor string

	// Key is the accumulation key for this slot: ActivityID when present,
	// else ActivityName. Computed once when the slot is built so the same
	// activity appearing twice in a sequence folds into one bucket.
	Key string

	ExpectedMinutes int
	ScheduledTime   string

	StartTime *time.Time
	EndTime   *time.Time
	SessionID string
}

// RunningRoutine is the state machine instance for a single active routine
// run.
type RunningRoutine struct {
	RoutineID   string
	RoutineName string
	RoutineType models.RoutineType

	Activities   []RoutineActivity
	CurrentIndex int

	StartTime time.Time
	IsPaused  bool
	PausedAt  *time.Time

	// TotalPausedSeconds accumulates across all pause/resume cycles in this
	// run.
	TotalPausedSeconds int64

	// CompletedOccurrencesSeconds accumulates time from fully finished
	// occurrences only; the live segment is never included here.
	CompletedOccurrencesSeconds int64

	// ActivityDurations maps slot Key -> cumulative seconds across the run.
	ActivityDurations map[string]int64
}

// Current returns the slot at CurrentIndex.
func (r *RunningRoutine) Current() *RoutineActivity {
	return &r.Activities[r.CurrentIndex]
}

// clone returns a deep copy safe to hand to the UI layer.
func (r *RunningRoutine) clone() *RunningRoutine {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Activities = make([]RoutineActivity, len(r.Activities))
	copy(cp.Activities, r.Activities)
	cp.ActivityDurations = make(map[string]int64, len(r.ActivityDurations))
	for k, v := range r.ActivityDurations {
		cp.ActivityDurations[k] = v
	}
	if r.PausedAt != nil {
		t := *r.PausedAt
		cp.PausedAt = &t
	}
	return &cp
}

// Logger is the minimal logging surface the engines need for best-effort
// paths that continue on failure.
type Logger interface {
	Warning(format string, args ...any)
	VerboseLog(format string, args ...any)
}

// nopLogger discards all log output.
type nopLogger struct{}

func (nopLogger) Warning(format string, args ...any)    {}
func (nopLogger) VerboseLog(format string, args ...any) {}

// IdleMonitor watches for user inactivity while no timer is live. The timer
// engine stops it when the first timer starts and restarts it when the
// running set empties.
type IdleMonitor interface {
	Start()
	Stop()
}

// nopIdleMonitor is the default monitor.
type nopIdleMonitor struct{}

func (nopIdleMonitor) Start() {}
func (nopIdleMonitor) Stop()  {}
