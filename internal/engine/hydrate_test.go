package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrov/tempo/internal/models"
)

func TestHydrate_AfterRestart(t *testing.T) {
	e1, s, _, clock := newRoutineEngine(t)
	ctx := context.Background()

	r := seedMorning(t, s)
	_, err := e1.Start(ctx, r.ID)
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)
	require.NoError(t, e1.Next(ctx))
	clock.Advance(5 * time.Minute)

	// A fresh engine over the same store stands in for a restarted process.
	e2 := NewRoutineEngine(s, &fakeScheduler{}, WithRoutineClock(clock.Now))
	require.NoError(t, e2.Hydrate(ctx))

	run := e2.Current()
	require.NotNil(t, run)
	assert.Equal(t, r.ID, run.RoutineID)
	assert.Equal(t, 1, run.CurrentIndex)
	assert.Equal(t, "Journal", run.Current().ActivityName)
	assert.False(t, run.IsPaused)

	// Coffee's finished occurrence came back from the session log.
	coffeeKey := run.Activities[0].Key
	assert.Equal(t, int64(600), run.ActivityDurations[coffeeKey])
	assert.Equal(t, int64(600), run.CompletedOccurrencesSeconds)

	// The rebuilt run reads the same as the live one.
	assert.Equal(t, CurrentActivityDuration(e1.Current(), clock.Now()),
		CurrentActivityDuration(run, clock.Now()))
	assert.Equal(t, TotalRoutineDuration(e1.Current(), clock.Now()),
		TotalRoutineDuration(run, clock.Now()))
}

func TestHydrate_Idempotent(t *testing.T) {
	e, s, _, clock := newRoutineEngine(t)
	ctx := context.Background()

	r := seedMorning(t, s)
	_, err := e.Start(ctx, r.ID)
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)

	require.NoError(t, e.Hydrate(ctx))
	first := e.Current()

	// Hydrate is called on every screen focus; repeated calls settle on the
	// same state.
	require.NoError(t, e.Hydrate(ctx))
	second := e.Current()
	assert.Equal(t, first.CurrentIndex, second.CurrentIndex)
	assert.Equal(t, first.Current().SessionID, second.Current().SessionID)
	assert.Equal(t, first.ActivityDurations, second.ActivityDurations)
}

func TestHydrate_NoRunningRoutineClearsState(t *testing.T) {
	e, s, _, clock := newRoutineEngine(t)
	ctx := context.Background()

	r := seedMorning(t, s)
	run, err := e.Start(ctx, r.ID)
	require.NoError(t, err)

	// The session is stopped behind the engine's back.
	_, err = s.StopSession(ctx, run.Current().SessionID, clock.Now())
	require.NoError(t, err)

	require.NoError(t, e.Hydrate(ctx))
	assert.Nil(t, e.Current(), "stale in-memory run is dropped")
}

func TestHydrate_LogWinsOverStaleMemory(t *testing.T) {
	e, s, _, clock := newRoutineEngine(t)
	ctx := context.Background()

	morning := seedMorning(t, s)
	stretch := seedActivity(t, s, "Stretch", 5)
	evening := seedRoutine(t, s, "Evening", stretch)

	run, err := e.Start(ctx, morning.ID)
	require.NoError(t, err)

	// Another process stopped the morning run and started the evening one.
	_, err = s.StopSession(ctx, run.Current().SessionID, clock.Now())
	require.NoError(t, err)
	require.NoError(t, s.DeleteSetting(ctx, runMarkerKey(morning.ID)))
	other := NewRoutineEngine(s, &fakeScheduler{}, WithRoutineClock(clock.Now))
	_, err = other.Start(ctx, evening.ID)
	require.NoError(t, err)

	require.NoError(t, e.Hydrate(ctx))
	got := e.Current()
	require.NotNil(t, got)
	assert.Equal(t, evening.ID, got.RoutineID)
	assert.Equal(t, "Stretch", got.Current().ActivityName)
}

func TestHydrate_PauseDoesNotSurviveRestart(t *testing.T) {
	e1, s, _, clock := newRoutineEngine(t)
	ctx := context.Background()

	r := seedMorning(t, s)
	_, err := e1.Start(ctx, r.ID)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	require.NoError(t, e1.Pause(ctx))

	e2 := NewRoutineEngine(s, &fakeScheduler{}, WithRoutineClock(clock.Now))
	require.NoError(t, e2.Hydrate(ctx))

	run := e2.Current()
	require.NotNil(t, run)
	assert.False(t, run.IsPaused)
	assert.Nil(t, run.PausedAt)
	assert.Zero(t, run.TotalPausedSeconds)
}

func TestHydrate_MarkerScopesOutEarlierRuns(t *testing.T) {
	e, s, _, clock := newRoutineEngine(t)
	ctx := context.Background()

	r := seedMorning(t, s)
	coffeeID := r.Items[0].ActivityID
	base := clock.Now()

	// Yesterday's finished run of the same routine.
	yesterday := base.Add(-24 * time.Hour)
	end := yesterday.Add(10 * time.Minute)
	require.NoError(t, s.CreateSession(ctx, &models.Session{
		ActivityID: coffeeID, ActivityName: "Coffee", RoutineID: r.ID,
		StartTime: yesterday, EndTime: &end, Source: models.SourceRoutine,
	}))

	// Today's run: one finished occurrence and the live one.
	require.NoError(t, s.SetSetting(ctx, runMarkerKey(r.ID), base.UTC().Format(time.RFC3339)))
	end2 := base.Add(7 * time.Minute)
	require.NoError(t, s.CreateSession(ctx, &models.Session{
		ActivityID: coffeeID, ActivityName: "Coffee", RoutineID: r.ID,
		StartTime: base, EndTime: &end2, Source: models.SourceRoutine,
	}))
	require.NoError(t, s.CreateSession(ctx, &models.Session{
		ActivityID: r.Items[1].ActivityID, ActivityName: "Journal", RoutineID: r.ID,
		StartTime: end2, Source: models.SourceRoutine,
	}))

	require.NoError(t, e.Hydrate(ctx))
	run := e.Current()
	require.NotNil(t, run)
	assert.Equal(t, 1, run.CurrentIndex)
	// Only today's coffee counts; yesterday's is outside the marker window.
	assert.Equal(t, int64(420), run.ActivityDurations[coffeeID])
	assert.Equal(t, int64(420), run.CompletedOccurrencesSeconds)
	assert.True(t, run.StartTime.Equal(base))
}

func TestHydrate_MissingMarkerFallsBackToSessionStart(t *testing.T) {
	e, s, _, clock := newRoutineEngine(t)
	ctx := context.Background()

	r := seedMorning(t, s)
	base := clock.Now()

	// An earlier finished session exists, but with no marker the window
	// starts at the live session itself.
	end := base.Add(-20 * time.Minute)
	require.NoError(t, s.CreateSession(ctx, &models.Session{
		ActivityID: r.Items[0].ActivityID, ActivityName: "Coffee", RoutineID: r.ID,
		StartTime: base.Add(-30 * time.Minute), EndTime: &end, Source: models.SourceRoutine,
	}))
	require.NoError(t, s.CreateSession(ctx, &models.Session{
		ActivityID: r.Items[0].ActivityID, ActivityName: "Coffee", RoutineID: r.ID,
		StartTime: base, Source: models.SourceRoutine,
	}))

	require.NoError(t, e.Hydrate(ctx))
	run := e.Current()
	require.NotNil(t, run)
	assert.Equal(t, 0, run.CurrentIndex)
	assert.Zero(t, run.CompletedOccurrencesSeconds)
	assert.Empty(t, run.ActivityDurations)
}

func TestHydrate_ClampsWhenDefinitionShrank(t *testing.T) {
	e, s, _, clock := newRoutineEngine(t)
	ctx := context.Background()

	r := seedMorning(t, s) // two items
	base := clock.Now()
	require.NoError(t, s.SetSetting(ctx, runMarkerKey(r.ID), base.UTC().Format(time.RFC3339)))

	// Three sessions in the run's window: the definition must have been
	// edited mid-run. The live slot clamps to the last defined item.
	for i := 0; i < 2; i++ {
		start := base.Add(time.Duration(i*10) * time.Minute)
		end := start.Add(10 * time.Minute)
		require.NoError(t, s.CreateSession(ctx, &models.Session{
			ActivityName: "Gone", RoutineID: r.ID,
			StartTime: start, EndTime: &end, Source: models.SourceRoutine,
		}))
	}
	require.NoError(t, s.CreateSession(ctx, &models.Session{
		ActivityName: "Journal", RoutineID: r.ID,
		StartTime: base.Add(20 * time.Minute), Source: models.SourceRoutine,
	}))

	require.NoError(t, e.Hydrate(ctx))
	run := e.Current()
	require.NotNil(t, run)
	assert.Equal(t, 1, run.CurrentIndex, "index clamps to the definition's last slot")
	assert.Equal(t, int64(1200), run.CompletedOccurrencesSeconds)
}

func TestHydrate_LiveSessionOutsideWindow(t *testing.T) {
	e, s, _, clock := newRoutineEngine(t)
	ctx := context.Background()

	r := seedMorning(t, s)
	base := clock.Now()

	// A marker from the future leaves the history empty; the run still
	// hydrates, anchored at the first slot.
	require.NoError(t, s.SetSetting(ctx, runMarkerKey(r.ID),
		base.Add(time.Hour).UTC().Format(time.RFC3339)))
	require.NoError(t, s.CreateSession(ctx, &models.Session{
		ActivityID: r.Items[0].ActivityID, ActivityName: "Coffee", RoutineID: r.ID,
		StartTime: base, Source: models.SourceRoutine,
	}))

	require.NoError(t, e.Hydrate(ctx))
	run := e.Current()
	require.NotNil(t, run)
	assert.Equal(t, 0, run.CurrentIndex)
}

func TestHydrate_MalformedMarkerFallsBack(t *testing.T) {
	e, s, _, clock := newRoutineEngine(t)
	ctx := context.Background()

	r := seedMorning(t, s)
	require.NoError(t, s.SetSetting(ctx, runMarkerKey(r.ID), "not-a-timestamp"))
	require.NoError(t, s.CreateSession(ctx, &models.Session{
		ActivityID: r.Items[0].ActivityID, ActivityName: "Coffee", RoutineID: r.ID,
		StartTime: clock.Now(), Source: models.SourceRoutine,
	}))

	require.NoError(t, e.Hydrate(ctx))
	run := e.Current()
	require.NotNil(t, run)
	assert.Equal(t, 0, run.CurrentIndex)
}

func TestHydrate_MissingDefinitionLeavesStateUntouched(t *testing.T) {
	e, s, _, clock := newRoutineEngine(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, &models.Session{
		ActivityName: "Orphan", RoutineID: "deleted-routine",
		StartTime: clock.Now(), Source: models.SourceRoutine,
	}))

	assert.Error(t, e.Hydrate(ctx))
	assert.Nil(t, e.Current())
}
