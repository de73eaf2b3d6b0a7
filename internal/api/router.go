// Package api exposes the ledger over HTTP with JSON bodies.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Philos250/TransactiTrack/internal/model"
)

// Ledger is the set of ledger operations served over HTTP.
type Ledger interface {
	CreateCategory(ctx context.Context, fields model.CategoryFields) (*model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CategoryUsage(ctx context.Context, start, end time.Time) ([]model.CategoryUsage, error)

	CreateTransaction(ctx context.Context, fields model.TransactionFields) (*model.TransactionView, error)
	GetTransaction(ctx context.Context, id string) (*model.TransactionView, error)
	ListTransactions(ctx context.Context) ([]model.TransactionView, error)
	UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) (*model.TransactionView, error)
	DeleteTransaction(ctx context.Context, id string) (*model.Transaction, error)
	ReportByDateRange(ctx context.Context, start, end time.Time) ([]model.TransactionView, error)
	Summary(ctx context.Context, start, end time.Time) (*model.Summary, error)
}

// Options configures the router.
type Options struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// DefaultOptions returns the router defaults.
func DefaultOptions() Options {
	return Options{
		Logger:         slog.Default(),
		AllowedOrigins: []string{"http://localhost:3000"},
		RequestTimeout: 30 * time.Second,
	}
}

// NewRouter builds the HTTP handler for the ledger API.
func NewRouter(ledger Ledger, opts Options) http.Handler {
	defaults := DefaultOptions()
	if opts.Logger == nil {
		opts.Logger = defaults.Logger
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaults.RequestTimeout
	}

	categories := NewCategoriesHandler(ledger)
	transactions := NewTransactionsHandler(ledger)

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Welcome to the TransactiTrack API"))
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categories.List)
			r.Post("/", categories.Create)
			r.Get("/usage", categories.Usage)
			r.Get("/{id}", categories.Get)
			r.Put("/{id}", categories.Update)
			r.Delete("/{id}", categories.Delete)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", transactions.List)
			r.Post("/", transactions.Create)
			r.Get("/report", transactions.Report)
			r.Get("/summary", transactions.Summary)
			r.Get("/{id}", transactions.Get)
			r.Put("/{id}", transactions.Update)
			r.Delete("/{id}", transactions.Delete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	return r
}
