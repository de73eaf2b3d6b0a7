// Package testutil provides test utilities for the ledger.
// It offers in-memory storage, a ready ledger service and category fixtures.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Philos250/TransactiTrack/internal/ledger"
	"github.com/Philos250/TransactiTrack/internal/model"
	"github.com/Philos250/TransactiTrack/internal/service"
	"github.com/Philos250/TransactiTrack/internal/storage"
)

// TestLedger bundles an in-memory store with a ledger service over it.
type TestLedger struct {
	Storage service.Storage
	Ledger  *ledger.Service
	Events  *RecordingNotifier
	Clock   *Clock
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory SQLite store that is closed when
// the test ends.
func SetupTestDB(t *testing.T) service.Storage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SetupTestLedger creates a ledger over a fresh in-memory store. Events are
// recorded and time is controlled by a fake clock.
//
// Example:
//
//	tl := testutil.SetupTestLedger(t)
//	cats := testutil.NewCategoryBuilder(t).WithBasicCategories().Build(tl.Ledger)
func SetupTestLedger(t *testing.T) *TestLedger {
	t.Helper()

	store := SetupTestDB(t)
	events := &RecordingNotifier{}
	clock := NewClock(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))

	return &TestLedger{
		Storage: store,
		Ledger: ledger.NewWithConfig(store, ledger.Config{
			Notifier: events,
			Clock:    clock.Now,
		}),
		Events: events,
		Clock:  clock,
		t:      t,
	}
}

// MustCount returns the number of stored transactions or fails the test.
func (tl *TestLedger) MustCount() int {
	tl.t.Helper()

	txns, err := tl.Storage.ListTransactions(context.Background(), service.TransactionFilter{})
	if err != nil {
		tl.t.Fatalf("failed to list transactions: %v", err)
	}
	return len(txns)
}

// RecordingNotifier keeps every event it receives.
type RecordingNotifier struct {
	events []model.Event
	mu     sync.Mutex
}

// Notify records the event.
func (r *RecordingNotifier) Notify(_ context.Context, event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Kinds returns the kinds of the recorded events in order.
func (r *RecordingNotifier) Kinds() []model.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]model.EventKind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Events returns a copy of the recorded events.
func (r *RecordingNotifier) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.events...)
}

// Clock is a manually advanced clock.
type Clock struct {
	now time.Time
	mu  sync.Mutex
}

// NewClock returns a clock stopped at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
