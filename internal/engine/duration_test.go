package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestElapsedSeconds(t *testing.T) {
	base := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(90), ElapsedSeconds(base, base.Add(90*time.Second)))
	assert.Equal(t, int64(0), ElapsedSeconds(base, base))
	// Inverted intervals clamp to zero instead of going negative.
	assert.Equal(t, int64(0), ElapsedSeconds(base, base.Add(-time.Minute)))
}

func TestCurrentActivityDuration(t *testing.T) {
	base := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	start := base

	r := &RunningRoutine{
		Activities: []RoutineActivity{
			{Key: "a", StartTime: &start},
		},
		CurrentIndex:      0,
		ActivityDurations: map[string]int64{"a": 120},
	}

	// Accumulated seconds for the slot's key plus the live segment.
	assert.Equal(t, int64(120+30), CurrentActivityDuration(r, base.Add(30*time.Second)))

	// A slot with no open occurrence contributes only its accumulated time.
	r.Activities[0].StartTime = nil
	assert.Equal(t, int64(120), CurrentActivityDuration(r, base.Add(time.Hour)))

	assert.Equal(t, int64(0), CurrentActivityDuration(nil, base))
}

func TestTotalRoutineDuration(t *testing.T) {
	base := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	start := base

	r := &RunningRoutine{
		Activities: []RoutineActivity{
			{Key: "a", StartTime: &start},
		},
		CurrentIndex:                0,
		CompletedOccurrencesSeconds: 600,
		ActivityDurations:           map[string]int64{},
	}

	assert.Equal(t, int64(600+45), TotalRoutineDuration(r, base.Add(45*time.Second)))
	assert.Equal(t, int64(0), TotalRoutineDuration(nil, base))
}

func TestDurations_FreezeWhilePaused(t *testing.T) {
	base := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	start := base
	pausedAt := base.Add(5 * time.Minute)

	r := &RunningRoutine{
		Activities:        []RoutineActivity{{Key: "a", StartTime: &start}},
		IsPaused:          true,
		PausedAt:          &pausedAt,
		ActivityDurations: map[string]int64{},
	}

	// However far the wall clock moves, a paused run reads as of pausedAt.
	at := CurrentActivityDuration(r, pausedAt)
	assert.Equal(t, at, CurrentActivityDuration(r, pausedAt.Add(3*time.Hour)))
	assert.Equal(t, int64(300), at)

	total := TotalRoutineDuration(r, pausedAt)
	assert.Equal(t, total, TotalRoutineDuration(r, pausedAt.Add(3*time.Hour)))
}
