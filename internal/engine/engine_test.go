package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mpetrov/tempo/internal/models"
	"github.com/mpetrov/tempo/internal/store"
)

// Engine tests run against the real SQLite store; the session log's behavior
// is part of what the engines depend on, and a tempdir database is cheap.

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

// fakeClock is a hand-driven clock for deterministic duration math.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeScheduler records schedule/cancel calls and can be told to fail.
type fakeScheduler struct {
	scheduled []string // session ids, in call order
	cancelled []string
	failNext  bool
}

func (f *fakeScheduler) ScheduleWarning(ctx context.Context, sessionID, label string, expectedMinutes int, startTime time.Time) error {
	if f.failNext {
		f.failNext = false
		return errors.New("scheduler down")
	}
	f.scheduled = append(f.scheduled, sessionID)
	return nil
}

func (f *fakeScheduler) Cancel(ctx context.Context, sessionID string) error {
	f.cancelled = append(f.cancelled, sessionID)
	return nil
}

// fakeIdleMonitor counts start/stop edges.
type fakeIdleMonitor struct {
	starts int
	stops  int
}

func (f *fakeIdleMonitor) Start() { f.starts++ }
func (f *fakeIdleMonitor) Stop()  { f.stops++ }

func seedActivity(t *testing.T, s store.Store, name string, defaultMinutes int) *models.Activity {
	t.Helper()
	a := &models.Activity{Name: name, DefaultExpectedMinutes: defaultMinutes}
	require.NoError(t, s.CreateActivity(context.Background(), a))
	return a
}

// seedRoutine creates a routine whose items reference the given activities in
// order, each with its activity's default expected minutes.
func seedRoutine(t *testing.T, s store.Store, name string, activities ...*models.Activity) *models.Routine {
	t.Helper()
	r := &models.Routine{Name: name, Type: models.RoutineTypeMorning}
	for i, a := range activities {
		r.Items = append(r.Items, &models.RoutineItem{
			ActivityID:              a.ID,
			ExpectedDurationMinutes: a.DefaultExpectedMinutes,
			DisplayOrder:            i,
		})
	}
	require.NoError(t, s.CreateRoutine(context.Background(), r))
	return r
}
