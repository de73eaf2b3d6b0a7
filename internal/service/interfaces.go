// Package service defines the interfaces shared by the ledger and its collaborators.
package service

import (
	"context"
	"time"

	"github.com/Philos250/TransactiTrack/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
// Start and End are inclusive; nil means unbounded.
type TransactionFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID string
}

// CategoryStore persists categories keyed by id.
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	// DeleteCategory removes the category and detaches its direct children.
	DeleteCategory(ctx context.Context, id string) error
}

// TransactionStore persists transactions keyed by id.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	CategoryStore
	TransactionStore

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Notifier receives ledger events after a write has been persisted.
// Implementations must not block the caller for long and report their own failures.
type Notifier interface {
	Notify(ctx context.Context, event model.Event)
}

// ReportWriter exports a finished report to an external destination.
type ReportWriter interface {
	Write(ctx context.Context, report *model.Report) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
