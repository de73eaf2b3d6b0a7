package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/Philos250/TransactiTrack/internal/aggregate"
	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/model"
	"github.com/Philos250/TransactiTrack/internal/service"
)

// ReportByDateRange returns every transaction dated within [start, end],
// joined with category names and in ascending date order. A start after
// end is rejected rather than swapped.
func (s *Service) ReportByDateRange(ctx context.Context, start, end time.Time) ([]model.TransactionView, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	return s.listViews(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
}

// Report returns the date-range report together with its summary.
func (s *Service) Report(ctx context.Context, start, end time.Time) (*model.Report, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	transactions, err := s.storage.ListTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	categories, err := s.storage.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return &model.Report{
		Range:        model.DateRange{Start: start, End: end},
		Transactions: joinCategoryNames(transactions, categories),
		Summary:      aggregate.Summarize(categories, transactions),
	}, nil
}

// Summary aggregates the transactions dated within [start, end] against
// every category.
func (s *Service) Summary(ctx context.Context, start, end time.Time) (*model.Summary, error) {
	report, err := s.Report(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return &report.Summary, nil
}

// CategoryUsage reports per-category budget consumption within [start, end].
func (s *Service) CategoryUsage(ctx context.Context, start, end time.Time) ([]model.CategoryUsage, error) {
	summary, err := s.Summary(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return summary.ByCategory, nil
}

func checkRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return common.MissingFields(missingBounds(start, end)...)
	}
	if start.After(end) {
		return common.NewValidationError("start date must not be after end date", "startDate", "endDate")
	}
	return nil
}

func missingBounds(start, end time.Time) []string {
	var fields []string
	if start.IsZero() {
		fields = append(fields, "startDate")
	}
	if end.IsZero() {
		fields = append(fields, "endDate")
	}
	return fields
}
