// Package ledger implements the category and transaction operations of the
// ledger, enforcing referential integrity and validation on every write.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Philos250/TransactiTrack/internal/events"
	"github.com/Philos250/TransactiTrack/internal/model"
	"github.com/Philos250/TransactiTrack/internal/service"
)

// Service orchestrates the category and transaction stores.
type Service struct {
	storage  service.Storage
	guard    *Guard
	notifier service.Notifier
	clock    func() time.Time
	newID    func() string
}

// Config holds the collaborators of the ledger service.
type Config struct {
	// Notifier receives an event after every successful write.
	Notifier service.Notifier
	// Clock supplies the current time for defaults and timestamps.
	Clock func() time.Time
	// NewID generates record identifiers.
	NewID func() string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Notifier: events.Noop{},
		Clock:    time.Now,
		NewID:    uuid.NewString,
	}
}

// New creates a ledger service with the default configuration.
func New(storage service.Storage) *Service {
	return NewWithConfig(storage, DefaultConfig())
}

// NewWithConfig creates a ledger service with custom collaborators.
// Nil fields fall back to their defaults.
func NewWithConfig(storage service.Storage, config Config) *Service {
	defaults := DefaultConfig()
	if config.Notifier == nil {
		config.Notifier = defaults.Notifier
	}
	if config.Clock == nil {
		config.Clock = defaults.Clock
	}
	if config.NewID == nil {
		config.NewID = defaults.NewID
	}

	return &Service{
		storage:  storage,
		guard:    NewGuard(storage),
		notifier: config.Notifier,
		clock:    config.Clock,
		newID:    config.NewID,
	}
}

// Guard returns the referential integrity guard used by the service.
func (s *Service) Guard() *Guard {
	return s.guard
}

func (s *Service) now() time.Time {
	return s.clock().UTC()
}

func (s *Service) notify(ctx context.Context, kind model.EventKind, id string, payload any) {
	s.notifier.Notify(ctx, model.Event{
		Kind:       kind,
		ID:         id,
		OccurredAt: s.now(),
		Payload:    payload,
	})
}
