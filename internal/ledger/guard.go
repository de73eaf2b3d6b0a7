package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/model"
	"github.com/Philos250/TransactiTrack/internal/service"
)

// Guard checks category references at write time. It installs no constraint:
// a category deleted after the check is not detected.
type Guard struct {
	categories service.CategoryStore
}

// NewGuard creates a guard backed by the given category store.
func NewGuard(categories service.CategoryStore) *Guard {
	return &Guard{categories: categories}
}

// Validate returns the referenced category, or an ErrInvalidReference error
// when it does not exist. Store failures are returned unchanged.
func (g *Guard) Validate(ctx context.Context, categoryID string) (*model.Category, error) {
	if strings.TrimSpace(categoryID) == "" {
		return nil, common.InvalidReference("category", categoryID)
	}

	category, err := g.categories.GetCategory(ctx, categoryID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.InvalidReference("category", categoryID)
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}
