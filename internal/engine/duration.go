package engine

import "time"

// Pure duration arithmetic shared by both engines. No I/O here; callers pass
// the clock in.

// ElapsedSeconds returns the whole seconds between start and end, clamped at
// zero for inverted intervals.
func ElapsedSeconds(start, end time.Time) int64 {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int64(d.Seconds())
}

// effectiveNow freezes the clock at the pause instant while a routine is
// paused. Every live-segment computation goes through this, which is how
// pause time stays excluded without ever being subtracted.
func (r *RunningRoutine) effectiveNow(now time.Time) time.Time {
	if r.IsPaused && r.PausedAt != nil {
		return *r.PausedAt
	}
	return now
}

// CurrentActivityDuration returns the cumulative seconds for the current
// slot's key across the run, plus the live segment of the open occurrence.
func CurrentActivityDuration(r *RunningRoutine, now time.Time) int64 {
	if r == nil || len(r.Activities) == 0 {
		return 0
	}
	slot := r.Current()
	total := r.ActivityDurations[slot.Key]
	if slot.StartTime != nil {
		total += ElapsedSeconds(*slot.StartTime, r.effectiveNow(now))
	}
	return total
}

// TotalRoutineDuration returns the run's total active seconds: all finished
// occurrences plus the live segment. TotalPausedSeconds is deliberately not
// subtracted here; pause time never entered because effectiveNow freezes at
// the pause instant.
func TotalRoutineDuration(r *RunningRoutine, now time.Time) int64 {
	if r == nil || len(r.Activities) == 0 {
		return 0
	}
	total := r.CompletedOccurrencesSeconds
	slot := r.Current()
	if slot.StartTime != nil {
		total += ElapsedSeconds(*slot.StartTime, r.effectiveNow(now))
	}
	return total
}
