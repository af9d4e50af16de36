package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/mpetrov/tempo/internal/models"
)

// Hydrate reconstructs the running routine purely from durable storage. It
// is a state-recovery operation, not a transition: idempotent, restart-safe,
// and the session log always wins over stale in-memory state. Callers treat
// a returned error as log-and-continue; the previous in-memory state is left
// untouched on failure.
//
// Pause state is not recoverable across a restart: the rebuilt run is always
// published unpaused.
func (e *RoutineEngine) Hydrate(ctx context.Context) error {
	running, err := e.store.GetRunningSessions(ctx)
	if err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}

	var live *models.Session
	for _, s := range running {
		if s.Source == models.SourceRoutine && s.RoutineID != "" {
			live = s
			break
		}
	}
	if live == nil {
		// No routine session is running; any in-memory run is stale.
		e.current = nil
		return nil
	}

	// Fast path: we already track this exact running session. Hydrate is
	// called on every screen focus, so redundant rebuilds matter.
	if r := e.current; r != nil && r.RoutineID == live.RoutineID &&
		r.CurrentIndex < len(r.Activities) && r.Current().SessionID == live.ID {
		return nil
	}

	def, err := e.store.GetRoutineWithItems(ctx, live.RoutineID)
	if err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}
	if def == nil || len(def.Items) == 0 {
		return fmt.Errorf("hydrate: routine %s has a running session %s but no usable definition", live.RoutineID, live.ID)
	}

	// The run-start marker scopes this run against earlier runs of the same
	// routine. Fall back to the running session's own start when the marker
	// is missing (e.g. written by an older version).
	runStart := live.StartTime
	marker, err := e.store.GetSetting(ctx, runMarkerKey(live.RoutineID))
	if err != nil {
		e.log.Warning("read run marker for %s: %v", def.Name, err)
	} else if marker != "" {
		if t, perr := time.Parse(time.RFC3339, marker); perr == nil {
			runStart = t
		} else {
			e.log.Warning("malformed run marker for %s: %v", def.Name, perr)
		}
	}

	hist, err := e.store.GetSessionsForRoutine(ctx, live.RoutineID, runStart)
	if err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}

	completed := int64(0)
	durations := make(map[string]int64)
	for _, s := range hist {
		if s.IsRunning {
			continue
		}
		secs := s.DurationSeconds()
		completed += secs
		durations[s.ActivityKey()] += secs
	}

	// The current index comes from the session history, not the definition:
	// the n-th session of the run occupies the n-th slot. The fallbacks
	// clamp against definitions edited mid-run.
	idx := -1
	for i, s := range hist {
		if s.ID == live.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		idx = min(len(hist), len(def.Items)) - 1
	}
	if idx >= len(def.Items) {
		idx = len(def.Items) - 1
	}
	if idx < 0 {
		idx = 0
	}

	slots := buildSlots(def)
	slots[idx].StartTime = &live.StartTime
	slots[idx].SessionID = live.ID

	e.current = &RunningRoutine{
		RoutineID:                   def.ID,
		RoutineName:                 def.Name,
		RoutineType:                 def.Type,
		Activities:                  slots,
		CurrentIndex:                idx,
		StartTime:                   runStart,
		IsPaused:                    false,
		CompletedOccurrencesSeconds: completed,
		ActivityDurations:           durations,
	}
	return nil
}
