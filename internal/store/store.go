package store

import (
	"context"
	"time"

	"github.com/mpetrov/tempo/internal/models"
)

// SessionFilter specifies filters for listing sessions.
type SessionFilter struct {
	ActivityID string
	RoutineID  string
	Source     models.SessionSource
	From       *time.Time
	To         *time.Time
	Limit      int
}

// Store defines the persistence interface for tempo. It covers the session
// log, the routine definition store, the generic settings store used for
// run markers, and the pending reminder queue.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	// StopSession marks a running session stopped at the given instant and
	// records its actual duration. It returns (nil, nil) when the session
	// does not exist or is not running.
	StopSession(ctx context.Context, id string, end time.Time) (*models.Session, error)
	GetRunningSessions(ctx context.Context) ([]*models.Session, error)
	// GetSessionsForRoutine returns sessions belonging to the routine with
	// start_time >= since, ordered by start time ascending.
	GetSessionsForRoutine(ctx context.Context, routineID string, since time.Time) ([]*models.Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]*models.Session, error)

	// Activities
	CreateActivity(ctx context.Context, a *models.Activity) error
	GetActivity(ctx context.Context, id string) (*models.Activity, error)
	GetActivityByName(ctx context.Context, name string) (*models.Activity, error)
	ListActivities(ctx context.Context) ([]*models.Activity, error)
	IncrementActivityUsage(ctx context.Context, id string) error

	// Categories
	CreateCategory(ctx context.Context, c *models.Category) error
	GetCategoryByName(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)

	// Routines
	CreateRoutine(ctx context.Context, r *models.Routine) error
	// GetRoutineWithItems returns the routine with its items in display
	// order, each joined with its activity row. Returns (nil, nil) when the
	// routine does not exist.
	GetRoutineWithItems(ctx context.Context, id string) (*models.Routine, error)
	GetRoutineByName(ctx context.Context, name string) (*models.Routine, error)
	ListRoutines(ctx context.Context) ([]*models.Routine, error)
	DeleteRoutine(ctx context.Context, id string) error

	// Settings (generic key/value; engines use it for run-start markers)
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error

	// Reminders
	UpsertReminder(ctx context.Context, r *models.Reminder) error
	DeleteReminder(ctx context.Context, sessionID string) error
	DueReminders(ctx context.Context, now time.Time) ([]*models.Reminder, error)
	ListReminders(ctx context.Context) ([]*models.Reminder, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
