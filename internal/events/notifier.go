// Package events delivers ledger change notifications to external systems.
package events

import (
	"context"
	"log/slog"

	"github.com/Philos250/TransactiTrack/internal/model"
	"github.com/Philos250/TransactiTrack/internal/service"
)

var (
	_ service.Notifier = Noop{}
	_ service.Notifier = (*LogNotifier)(nil)
	_ service.Notifier = (*Publisher)(nil)
)

// Noop discards every event.
type Noop struct{}

// Notify implements service.Notifier.
func (Noop) Notify(context.Context, model.Event) {}

// LogNotifier writes each event to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs events at debug level.
// A nil logger uses the default logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements service.Notifier.
func (n *LogNotifier) Notify(ctx context.Context, event model.Event) {
	n.logger.DebugContext(ctx, "ledger event",
		"kind", event.Kind,
		"id", event.ID,
		"occurred_at", event.OccurredAt)
}
