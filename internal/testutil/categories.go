package testutil

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Philos250/TransactiTrack/internal/ledger"
	"github.com/Philos250/TransactiTrack/internal/model"
)

// CategoryName represents a strongly-typed category name.
type CategoryName string

// Common category names used across tests.
const (
	CategoryFood      CategoryName = "Food"
	CategoryRent      CategoryName = "Rent"
	CategorySalary    CategoryName = "Salary"
	CategoryTransport CategoryName = "Transport"
)

// Categories maps fixture names to the created categories.
type Categories map[CategoryName]model.Category

// MustGet returns the category with the given name or fails the test.
func (c Categories) MustGet(t *testing.T, name CategoryName) model.Category {
	t.Helper()
	cat, ok := c[name]
	if !ok {
		t.Fatalf("category %q not found in test data", name)
	}
	return cat
}

// ID returns the id of the named category, or "" if it was not built.
func (c Categories) ID(name CategoryName) string {
	return c[name].ID
}

type categorySpec struct {
	name   CategoryName
	budget decimal.Decimal
}

// CategoryBuilder provides a fluent interface for seeding categories.
type CategoryBuilder struct {
	t     *testing.T
	specs []categorySpec
}

// NewCategoryBuilder creates a new category builder for the given test.
func NewCategoryBuilder(t *testing.T) *CategoryBuilder {
	return &CategoryBuilder{t: t}
}

// WithCategory adds a category with the given budget.
func (b *CategoryBuilder) WithCategory(name CategoryName, budget int64) *CategoryBuilder {
	b.specs = append(b.specs, categorySpec{name: name, budget: decimal.NewFromInt(budget)})
	return b
}

// WithBasicCategories adds Food (10000), Rent (1200) and Salary (no budget).
func (b *CategoryBuilder) WithBasicCategories() *CategoryBuilder {
	return b.
		WithCategory(CategoryFood, 10000).
		WithCategory(CategoryRent, 1200).
		WithCategory(CategorySalary, 0)
}

// Build creates the categories through the ledger and fails the test on error.
func (b *CategoryBuilder) Build(l *ledger.Service) Categories {
	b.t.Helper()

	created := make(Categories, len(b.specs))
	for _, spec := range b.specs {
		budget := spec.budget
		cat, err := l.CreateCategory(context.Background(), model.CategoryFields{
			Name:   string(spec.name),
			Budget: &budget,
		})
		if err != nil {
			b.t.Fatalf("failed to seed category %q: %v", spec.name, err)
		}
		created[spec.name] = *cat
	}
	return created
}
