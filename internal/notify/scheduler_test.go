package notify

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrov/tempo/internal/store"
)

func newTestScheduler(t *testing.T) (*StoreScheduler, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return NewStoreScheduler(s), s
}

func TestScheduleWarning(t *testing.T) {
	sched, s := newTestScheduler(t)
	ctx := context.Background()

	start := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	require.NoError(t, sched.ScheduleWarning(ctx, "sess1", "Coffee", 10, start))

	reminders, err := s.ListReminders(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "sess1", reminders[0].SessionID)
	assert.Equal(t, "Coffee", reminders[0].Label)
	assert.True(t, reminders[0].FireAt.Equal(start.Add(10*time.Minute)))

	// Not due until the expected duration has passed.
	due, err := s.DueReminders(ctx, start.Add(9*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, due)
	due, err = s.DueReminders(ctx, start.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestScheduleWarning_RejectsNonPositiveMinutes(t *testing.T) {
	sched, _ := newTestScheduler(t)
	ctx := context.Background()

	assert.Error(t, sched.ScheduleWarning(ctx, "sess1", "Coffee", 0, time.Now()))
	assert.Error(t, sched.ScheduleWarning(ctx, "sess1", "Coffee", -5, time.Now()))
}

func TestScheduleWarning_ReplacesExisting(t *testing.T) {
	sched, s := newTestScheduler(t)
	ctx := context.Background()

	start := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	require.NoError(t, sched.ScheduleWarning(ctx, "sess1", "Coffee", 10, start))
	// Rescheduling the same session moves its fire time, no duplicate row.
	require.NoError(t, sched.ScheduleWarning(ctx, "sess1", "Coffee", 30, start))

	reminders, err := s.ListReminders(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.True(t, reminders[0].FireAt.Equal(start.Add(30*time.Minute)))
}

func TestCancel_Idempotent(t *testing.T) {
	sched, s := newTestScheduler(t)
	ctx := context.Background()

	require.NoError(t, sched.ScheduleWarning(ctx, "sess1", "Coffee", 10, time.Now()))
	require.NoError(t, sched.Cancel(ctx, "sess1"))

	reminders, err := s.ListReminders(ctx)
	require.NoError(t, err)
	assert.Empty(t, reminders)

	// Cancelling again, or cancelling something never scheduled, is fine.
	assert.NoError(t, sched.Cancel(ctx, "sess1"))
	assert.NoError(t, sched.Cancel(ctx, "never"))
}
