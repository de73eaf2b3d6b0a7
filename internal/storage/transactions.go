package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/model"
	"github.com/Philos250/TransactiTrack/internal/service"
)

const transactionColumns = `id, amount, description, category_id, type, account_type, date, created_at, updated_at`

// CreateTransaction inserts a new transaction.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.Amount.String(),
		txn.Description,
		txn.CategoryID,
		string(txn.Type),
		string(txn.AccountType),
		toUnixNano(txn.Date),
		toUnixNano(txn.CreatedAt),
		toUnixNano(txn.UpdatedAt),
	)
	if err != nil {
		return common.StoreError("failed to insert transaction", err)
	}

	slog.Debug("created transaction", "id", txn.ID, "category", txn.CategoryID)
	return nil
}

// GetTransaction returns the transaction with the given id.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := requireID("transaction", id); err != nil {
		return nil, err
	}
	return s.getTransactionTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getTransactionTx(ctx context.Context, q queryable, id string) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("transaction", id)
	}
	if err != nil {
		return nil, common.StoreError("failed to get transaction", err)
	}
	return txn, nil
}

// ListTransactions returns the transactions matching filter in ascending date order.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		conditions []string
		args       []any
	)
	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, toUnixNano(*filter.StartDate))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, toUnixNano(*filter.EndDate))
	}
	if filter.CategoryID != "" {
		conditions = append(conditions, "category_id = ?")
		args = append(args, filter.CategoryID)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.StoreError("failed to query transactions", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, common.StoreError("failed to scan transaction", err)
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, common.StoreError("error iterating transactions", err)
	}

	slog.Debug("retrieved transactions", "count", len(transactions))
	return transactions, nil
}

// UpdateTransaction replaces the stored fields of an existing transaction.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, description = ?, category_id = ?, type = ?,
		    account_type = ?, date = ?, updated_at = ?
		WHERE id = ?`,
		txn.Amount.String(),
		txn.Description,
		txn.CategoryID,
		string(txn.Type),
		string(txn.AccountType),
		toUnixNano(txn.Date),
		toUnixNano(txn.UpdatedAt),
		txn.ID,
	)
	if err != nil {
		return common.StoreError("failed to update transaction", err)
	}

	if err := expectOneRow(result, "transaction", txn.ID); err != nil {
		return err
	}

	slog.Debug("updated transaction", "id", txn.ID)
	return nil
}

// DeleteTransaction removes a transaction.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := requireID("transaction", id); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return common.StoreError("failed to delete transaction", err)
	}
	if err := expectOneRow(result, "transaction", id); err != nil {
		return err
	}

	slog.Debug("deleted transaction", "id", id)
	return nil
}

// CountTransactionsByCategory returns how many transactions reference categoryID.
func (s *SQLiteStorage) CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(categoryID, "categoryID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID,
	).Scan(&count)
	if err != nil {
		return 0, common.StoreError("failed to count transactions", err)
	}
	return count, nil
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn         model.Transaction
		txnType     string
		accountType string
		date        int64
		createdAt   int64
		updatedAt   int64
	)

	if err := row.Scan(
		&txn.ID,
		&txn.Amount,
		&txn.Description,
		&txn.CategoryID,
		&txnType,
		&accountType,
		&date,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	txn.Type = model.TransactionType(txnType)
	txn.AccountType = model.AccountType(accountType)
	txn.Date = fromUnixNano(date)
	txn.CreatedAt = fromUnixNano(createdAt)
	txn.UpdatedAt = fromUnixNano(updatedAt)

	return &txn, nil
}
