package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/config"
	"github.com/Philos250/TransactiTrack/internal/events"
	"github.com/Philos250/TransactiTrack/internal/ledger"
	"github.com/Philos250/TransactiTrack/internal/service"
	"github.com/Philos250/TransactiTrack/internal/storage"
	"github.com/Philos250/TransactiTrack/internal/storage/boltdb"
)

// openStorage opens the configured backend without migrating it.
func (a *app) openStorage() (service.Storage, error) {
	db := a.cfg.Database

	slog.Debug("Opening storage", "backend", db.Backend, "path", db.Path)

	switch db.Backend {
	case config.BackendBolt:
		store, err := boltdb.New(db.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendSQLite:
		store, err := storage.NewSQLiteStorage(db.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown database backend %q", common.ErrInvalidConfig, db.Backend)
	}
}

// initStorage opens the configured backend and brings its schema up to date.
func (a *app) initStorage(ctx context.Context) (service.Storage, error) {
	store, err := a.openStorage()
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newNotifier publishes events to the configured broker, or logs them at
// debug level when no broker is configured.
func (a *app) newNotifier(ctx context.Context) (service.Notifier, func(), error) {
	if !a.cfg.Events.Enabled() {
		return events.NewLogNotifier(slog.Default()), func() {}, nil
	}

	publisher, err := events.NewPublisher(ctx, a.cfg.Events.Publisher())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect event publisher: %w", err)
	}

	return publisher, func() {
		if err := publisher.Close(); err != nil {
			slog.Warn("Failed to close event publisher", "error", err)
		}
	}, nil
}

// openLedger opens storage and the notifier and wires the ledger over them.
// The returned function releases both.
func (a *app) openLedger(ctx context.Context) (*ledger.Service, func(), error) {
	store, err := a.initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	notifier, closeNotifier, err := a.newNotifier(ctx)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	svc := ledger.NewWithConfig(store, ledger.Config{Notifier: notifier})

	return svc, func() {
		closeNotifier()
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close storage", "error", err)
		}
	}, nil
}

// parseRangeFlags reads --start and --end. A date-only end covers the whole day.
func parseRangeFlags(start, end string) (time.Time, time.Time, error) {
	var missing []string
	if start == "" {
		missing = append(missing, "start")
	}
	if end == "" {
		missing = append(missing, "end")
	}
	if len(missing) > 0 {
		return time.Time{}, time.Time{}, common.MissingFields(missing...)
	}

	from, err := common.ParseDate(start, false)
	if err != nil {
		return time.Time{}, time.Time{}, common.NewValidationError(err.Error(), "start")
	}
	to, err := common.ParseDate(end, true)
	if err != nil {
		return time.Time{}, time.Time{}, common.NewValidationError(err.Error(), "end")
	}
	return from, to, nil
}
