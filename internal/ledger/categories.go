package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/model"
)

// CreateCategory validates fields and stores a new category.
func (s *Service) CreateCategory(ctx context.Context, fields model.CategoryFields) (*model.Category, error) {
	name := strings.TrimSpace(fields.Name)
	if name == "" {
		return nil, common.MissingFields("name")
	}

	budget := decimal.Zero
	if fields.Budget != nil {
		if fields.Budget.IsNegative() {
			return nil, errNegativeBudget
		}
		budget = *fields.Budget
	}

	var parentID *string
	if fields.ParentID != nil && strings.TrimSpace(*fields.ParentID) != "" {
		if _, err := s.guard.Validate(ctx, *fields.ParentID); err != nil {
			return nil, err
		}
		parent := *fields.ParentID
		parentID = &parent
	}

	now := s.now()
	category := &model.Category{
		ID:          s.newID(),
		Name:        name,
		Description: strings.TrimSpace(fields.Description),
		ParentID:    parentID,
		Budget:      budget,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.storage.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.notify(ctx, model.EventCategoryCreated, category.ID, category)
	return category, nil
}

// GetCategory returns a single category.
func (s *Service) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return s.storage.GetCategory(ctx, id)
}

// ListCategories returns every category.
func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.storage.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory merges the supplied fields into an existing category.
func (s *Service) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	category, err := s.storage.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return category, nil
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, common.MissingFields("name")
		}
		category.Name = name
	}

	if patch.Description != nil {
		category.Description = strings.TrimSpace(*patch.Description)
	}

	if patch.Budget != nil {
		if patch.Budget.IsNegative() {
			return nil, errNegativeBudget
		}
		category.Budget = *patch.Budget
	}

	if patch.ParentID != nil {
		parentID := strings.TrimSpace(*patch.ParentID)
		if parentID == "" {
			category.ParentID = nil
		} else {
			if err := s.checkParent(ctx, category.ID, parentID); err != nil {
				return nil, err
			}
			category.ParentID = &parentID
		}
	}

	category.UpdatedAt = s.now()
	if err := s.storage.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.notify(ctx, model.EventCategoryUpdated, category.ID, category)
	return category, nil
}

// DeleteCategory removes a category that no transaction references.
// Direct children are detached and become top-level categories.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.storage.GetCategory(ctx, id); err != nil {
		return err
	}

	count, err := s.storage.CountTransactionsByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count category references: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: category %q is referenced by %d transaction(s)", common.ErrCategoryInUse, id, count)
	}

	if err := s.storage.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.notify(ctx, model.EventCategoryDeleted, id, nil)
	return nil
}

var errNegativeBudget = common.NewValidationError("budget must not be negative", "budget")

// checkParent rejects a parent that is missing, is the category itself, or
// has the category among its ancestors.
func (s *Service) checkParent(ctx context.Context, id, parentID string) error {
	if parentID == id {
		return common.NewValidationError("category cannot be its own parent", "parentCategory")
	}

	if _, err := s.guard.Validate(ctx, parentID); err != nil {
		return err
	}

	categories, err := s.storage.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	parents := make(map[string]string, len(categories))
	for _, c := range categories {
		if c.HasParent() {
			parents[c.ID] = *c.ParentID
		}
	}

	seen := map[string]bool{}
	for current := parentID; current != ""; current = parents[current] {
		if current == id {
			return common.NewValidationError("parent would create a cycle", "parentCategory")
		}
		if seen[current] {
			break
		}
		seen[current] = true
	}
	return nil
}
