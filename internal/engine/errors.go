package engine

import "errors"

// Error kinds callers branch on. Persistence failures are not a sentinel;
// they surface as wrapped store errors.
var (
	// ErrNotFound reports an unknown timer, routine, or activity id.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports an attempt to start a timer whose activity name
	// matches an already-running timer (case-insensitive).
	ErrConflict = errors.New("timer already running for activity")

	// ErrEmptyRoutine reports starting a routine that has no items.
	ErrEmptyRoutine = errors.New("routine has no activities")
)
