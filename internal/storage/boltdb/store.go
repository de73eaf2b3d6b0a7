// Package boltdb provides a bbolt-backed implementation of the ledger storage.
// Categories and transactions live in separate buckets keyed by id and
// encoded as JSON.
package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/model"
	"github.com/Philos250/TransactiTrack/internal/service"
)

// Bucket names.
const (
	BucketCategories   = "categories"
	BucketTransactions = "transactions"
)

var _ service.Storage = (*Store)(nil)

// Store represents the bbolt database wrapper.
type Store struct {
	db *bolt.DB
}

// New opens (or creates) the database at dbPath.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the buckets the ledger needs.
func (s *Store) Migrate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{BucketCategories, BucketTransactions} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
}

// CreateCategory stores a new category.
func (s *Store) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, BucketCategories, category.ID, category)
	})
	if err != nil {
		return common.StoreError("failed to insert category", err)
	}

	slog.Debug("created category", "id", category.ID, "name", category.Name)
	return nil
}

// GetCategory returns the category with the given id.
func (s *Store) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var category model.Category
	err := s.db.View(func(tx *bolt.Tx) error {
		return get(tx, BucketCategories, id, &category)
	})
	if errors.Is(err, errMissing) {
		return nil, common.NotFound("category", id)
	}
	if err != nil {
		return nil, common.StoreError("failed to get category", err)
	}
	return &category, nil
}

// ListCategories returns every category ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	categories := []model.Category{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return each(tx, BucketCategories, func(data []byte) error {
			var category model.Category
			if err := json.Unmarshal(data, &category); err != nil {
				return err
			}
			categories = append(categories, category)
			return nil
		})
	})
	if err != nil {
		return nil, common.StoreError("failed to list categories", err)
	}

	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Name != categories[j].Name {
			return categories[i].Name < categories[j].Name
		}
		return categories[i].ID < categories[j].ID
	})
	return categories, nil
}

// UpdateCategory replaces an existing category.
func (s *Store) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		if !exists(tx, BucketCategories, category.ID) {
			return common.NotFound("category", category.ID)
		}
		return put(tx, BucketCategories, category.ID, category)
	})
	if err != nil {
		return common.StoreError("failed to update category", err)
	}
	return nil
}

// DeleteCategory removes a category and detaches its direct children
// inside a single bbolt transaction.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now().UTC()
	err := s.db.Update(func(tx *bolt.Tx) error {
		if !exists(tx, BucketCategories, id) {
			return common.NotFound("category", id)
		}
		if err := bucket(tx, BucketCategories).Delete([]byte(id)); err != nil {
			return err
		}

		var children []model.Category
		err := each(tx, BucketCategories, func(data []byte) error {
			var category model.Category
			if err := json.Unmarshal(data, &category); err != nil {
				return err
			}
			if category.ParentID != nil && *category.ParentID == id {
				children = append(children, category)
			}
			return nil
		})
		if err != nil {
			return err
		}

		// Writes are deferred until after ForEach; mutating during iteration is unsafe.
		for i := range children {
			children[i].ParentID = nil
			children[i].UpdatedAt = now
			if err := put(tx, BucketCategories, children[i].ID, &children[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return common.StoreError("failed to delete category", err)
	}

	slog.Debug("deleted category", "id", id)
	return nil
}

// CreateTransaction stores a new transaction.
func (s *Store) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, BucketTransactions, txn.ID, txn)
	})
	if err != nil {
		return common.StoreError("failed to insert transaction", err)
	}

	slog.Debug("created transaction", "id", txn.ID, "category", txn.CategoryID)
	return nil
}

// GetTransaction returns the transaction with the given id.
func (s *Store) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var txn model.Transaction
	err := s.db.View(func(tx *bolt.Tx) error {
		return get(tx, BucketTransactions, id, &txn)
	})
	if errors.Is(err, errMissing) {
		return nil, common.NotFound("transaction", id)
	}
	if err != nil {
		return nil, common.StoreError("failed to get transaction", err)
	}
	return &txn, nil
}

// ListTransactions returns the transactions matching filter in ascending date order.
func (s *Store) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	transactions := []model.Transaction{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return each(tx, BucketTransactions, func(data []byte) error {
			var txn model.Transaction
			if err := json.Unmarshal(data, &txn); err != nil {
				return err
			}
			if matches(filter, &txn) {
				transactions = append(transactions, txn)
			}
			return nil
		})
	})
	if err != nil {
		return nil, common.StoreError("failed to list transactions", err)
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		if !transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].Date.Before(transactions[j].Date)
		}
		return transactions[i].ID < transactions[j].ID
	})
	return transactions, nil
}

// UpdateTransaction replaces an existing transaction.
func (s *Store) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		if !exists(tx, BucketTransactions, txn.ID) {
			return common.NotFound("transaction", txn.ID)
		}
		return put(tx, BucketTransactions, txn.ID, txn)
	})
	if err != nil {
		return common.StoreError("failed to update transaction", err)
	}
	return nil
}

// DeleteTransaction removes a transaction.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		if !exists(tx, BucketTransactions, id) {
			return common.NotFound("transaction", id)
		}
		return bucket(tx, BucketTransactions).Delete([]byte(id))
	})
	if err != nil {
		return common.StoreError("failed to delete transaction", err)
	}
	return nil
}

// CountTransactionsByCategory returns how many transactions reference categoryID.
func (s *Store) CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error) {
	txns, err := s.ListTransactions(ctx, service.TransactionFilter{CategoryID: categoryID})
	if err != nil {
		return 0, err
	}
	return len(txns), nil
}

func matches(filter service.TransactionFilter, txn *model.Transaction) bool {
	if filter.StartDate != nil && txn.Date.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && txn.Date.After(*filter.EndDate) {
		return false
	}
	if filter.CategoryID != "" && txn.CategoryID != filter.CategoryID {
		return false
	}
	return true
}
