package models

import "time"

// RoutineType distinguishes how a routine is meant to be used.
type RoutineType string

const (
	RoutineTypeMorning RoutineType = "morning"
	RoutineTypeEvening RoutineType = "evening"
	RoutineTypeCustom  RoutineType = "custom"
)

// Routine is a named, ordered template of activities executed in sequence.
type Routine struct {
	ID        string
	Name      string
	Type      RoutineType
	Items     []*RoutineItem
	CreatedAt time.Time
}

// RoutineItem is one slot in a routine's defined sequence. Activity is the
// joined activity row, loaded by GetRoutineWithItems; it is nil when the
// referenced activity has been deleted.
type RoutineItem struct {
	ID                      string
	RoutineID               string
	ActivityID              string
	ExpectedDurationMinutes int
	ScheduledTime           string // "HH:MM", informational only
	DisplayOrder            int
	Activity                *Activity
}

// Reminder is a pending "time's up" notification keyed by the session it
// warns about.
type Reminder struct {
	SessionID string
	Label     string
	FireAt    time.Time
	CreatedAt time.Time
}
