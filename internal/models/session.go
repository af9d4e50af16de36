package models

import "time"

// SessionSource records how a session was created.
type SessionSource string

const (
	SourceTimer     SessionSource = "timer"
	SourceManual    SessionSource = "manual"
	SourceRoutine   SessionSource = "routine"
	SourceAssistant SessionSource = "assistant"
)

// Session is one durable, timestamped record of time spent. A session is
// running while EndTime is nil; IsRunning mirrors that exactly and is the
// store's responsibility to keep in sync.
type Session struct {
	ID string

	// ActivityID may be empty: ad-hoc manual sessions have no activity, and
	// the referenced activity may have been deleted since. The name and
	// category snapshots keep historical sessions meaningful either way.
	ActivityID   string
	ActivityName string
	CategoryID   string
	CategoryName string

	// RoutineID is set only for sessions created as part of a routine run.
	RoutineID string

	StartTime               time.Time
	EndTime                 *time.Time
	ActualDurationMinutes   *float64
	ExpectedDurationMinutes *int
	IsPlanned               bool
	Source                  SessionSource
	IsRunning               bool
}

// DurationSeconds returns the session's recorded duration in seconds,
// computing it from the start/end pair when the stored minutes are absent.
func (s *Session) DurationSeconds() int64 {
	if s.ActualDurationMinutes != nil {
		return int64(*s.ActualDurationMinutes * 60)
	}
	if s.EndTime == nil {
		return 0
	}
	return int64(s.EndTime.Sub(s.StartTime).Seconds())
}

// ActivityKey returns the key under which this session's time accumulates:
// the activity id when present, else the activity name snapshot. Ad-hoc
// occurrences of the same named activity fold together this way.
func (s *Session) ActivityKey() string {
	if s.ActivityID != "" {
		return s.ActivityID
	}
	return s.ActivityName
}
