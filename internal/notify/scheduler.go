// Package notify holds the reminder scheduling contract the engines depend
// on, plus the default store-backed implementation consumed by `tempo
// remind`.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/mpetrov/tempo/internal/models"
	"github.com/mpetrov/tempo/internal/store"
)

// Scheduler schedules and cancels time-based "time's up" warnings keyed by
// session id. Cancel must be idempotent: cancelling a session that was never
// scheduled is a no-op, not an error.
type Scheduler interface {
	ScheduleWarning(ctx context.Context, sessionID, label string, expectedMinutes int, startTime time.Time) error
	Cancel(ctx context.Context, sessionID string) error
}

// StoreScheduler persists pending reminders in the store's reminder queue.
// A separate watcher process drains the queue when reminders come due.
type StoreScheduler struct {
	store store.Store
}

// NewStoreScheduler creates a Scheduler backed by the given store.
func NewStoreScheduler(s store.Store) *StoreScheduler {
	return &StoreScheduler{store: s}
}

func (s *StoreScheduler) ScheduleWarning(ctx context.Context, sessionID, label string, expectedMinutes int, startTime time.Time) error {
	if expectedMinutes <= 0 {
		return fmt.Errorf("schedule warning: expected minutes must be positive, got %d", expectedMinutes)
	}
	r := &models.Reminder{
		SessionID: sessionID,
		Label:     label,
		FireAt:    startTime.Add(time.Duration(expectedMinutes) * time.Minute),
	}
	if err := s.store.UpsertReminder(ctx, r); err != nil {
		return fmt.Errorf("schedule warning: %w", err)
	}
	return nil
}

func (s *StoreScheduler) Cancel(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteReminder(ctx, sessionID); err != nil {
		return fmt.Errorf("cancel reminder: %w", err)
	}
	return nil
}
