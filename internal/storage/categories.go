package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/model"
)

const categoryColumns = `id, name, description, parent_id, budget, created_at, updated_at`

// CreateCategory inserts a new category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		category.ID,
		category.Name,
		category.Description,
		nullableString(category.ParentID),
		category.Budget.String(),
		toUnixNano(category.CreatedAt),
		toUnixNano(category.UpdatedAt),
	)
	if err != nil {
		return common.StoreError("failed to insert category", err)
	}

	slog.Debug("created category", "id", category.ID, "name", category.Name)
	return nil
}

// GetCategory returns the category with the given id.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := requireID("category", id); err != nil {
		return nil, err
	}
	return s.getCategoryTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getCategoryTx(ctx context.Context, q queryable, id string) (*model.Category, error) {
	row := q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)

	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("category", id)
	}
	if err != nil {
		return nil, common.StoreError("failed to get category", err)
	}
	return category, nil
}

// ListCategories returns every category ordered by name.
func (s *SQLiteStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, common.StoreError("failed to query categories", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, common.StoreError("failed to scan category", err)
		}
		categories = append(categories, *category)
	}

	if err := rows.Err(); err != nil {
		return nil, common.StoreError("error iterating categories", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// UpdateCategory replaces the stored fields of an existing category.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, description = ?, parent_id = ?, budget = ?, updated_at = ?
		WHERE id = ?`,
		category.Name,
		category.Description,
		nullableString(category.ParentID),
		category.Budget.String(),
		toUnixNano(category.UpdatedAt),
		category.ID,
	)
	if err != nil {
		return common.StoreError("failed to update category", err)
	}

	if err := expectOneRow(result, "category", category.ID); err != nil {
		return err
	}

	slog.Debug("updated category", "id", category.ID)
	return nil
}

// DeleteCategory removes a category and detaches its direct children.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := requireID("category", id); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return common.StoreError("failed to delete category", err)
		}
		if err := expectOneRow(result, "category", id); err != nil {
			return err
		}

		detached, err := tx.ExecContext(ctx, `
			UPDATE categories SET parent_id = NULL, updated_at = ?
			WHERE parent_id = ?`, toUnixNano(time.Now()), id)
		if err != nil {
			return common.StoreError("failed to detach child categories", err)
		}

		if n, err := detached.RowsAffected(); err == nil && n > 0 {
			slog.Debug("detached child categories", "parent", id, "count", n)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("deleted category", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var (
		category  model.Category
		parentID  sql.NullString
		createdAt int64
		updatedAt int64
	)

	if err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&parentID,
		&category.Budget,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	if parentID.Valid && parentID.String != "" {
		parent := parentID.String
		category.ParentID = &parent
	}
	category.CreatedAt = fromUnixNano(createdAt)
	category.UpdatedAt = fromUnixNano(updatedAt)

	return &category, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func expectOneRow(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return common.StoreError("failed to read affected rows", err)
	}
	if n == 0 {
		return common.NotFound(kind, id)
	}
	return nil
}

var (
	minUnixNano = time.Unix(0, math.MinInt64).UTC()
	maxUnixNano = time.Unix(0, math.MaxInt64).UTC()
)

// toUnixNano clamps t to the range an int64 of nanoseconds can hold.
// Stored transaction dates are validated to lie well inside it; only
// query bounds get clamped.
func toUnixNano(t time.Time) int64 {
	switch {
	case t.Before(minUnixNano):
		return math.MinInt64
	case t.After(maxUnixNano):
		return math.MaxInt64
	}
	return t.UTC().UnixNano()
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
