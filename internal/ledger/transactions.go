package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/model"
	"github.com/Philos250/TransactiTrack/internal/service"
)

// Field names reported in validation errors.
const (
	fieldAmount      = "amount"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldType        = "type"
	fieldAccountType = "accountType"
	fieldDate        = "date"
)

// CreateTransaction validates fields, checks the category reference and
// stores a new transaction. An absent date defaults to now; a supplied one
// must fall inside the supported date window.
func (s *Service) CreateTransaction(ctx context.Context, fields model.TransactionFields) (*model.TransactionView, error) {
	var missing, invalid []string

	if fields.Amount == nil {
		missing = append(missing, fieldAmount)
	}
	description := strings.TrimSpace(fields.Description)
	if description == "" {
		missing = append(missing, fieldDescription)
	}
	categoryID := strings.TrimSpace(fields.CategoryID)
	if categoryID == "" {
		missing = append(missing, fieldCategory)
	}

	var (
		txnType     model.TransactionType
		accountType model.AccountType
		err         error
	)
	switch {
	case strings.TrimSpace(fields.Type) == "":
		missing = append(missing, fieldType)
	default:
		if txnType, err = model.ParseTransactionType(fields.Type); err != nil {
			invalid = append(invalid, fieldType)
		}
	}
	switch {
	case strings.TrimSpace(fields.AccountType) == "":
		missing = append(missing, fieldAccountType)
	default:
		if accountType, err = model.ParseAccountType(fields.AccountType); err != nil {
			invalid = append(invalid, fieldAccountType)
		}
	}

	now := s.now()
	date := now
	if fields.Date != nil {
		if !model.ValidDate(*fields.Date) {
			invalid = append(invalid, fieldDate)
		}
		date = fields.Date.UTC()
	}

	if err := fieldError(missing, invalid); err != nil {
		return nil, err
	}

	category, err := s.guard.Validate(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	txn := &model.Transaction{
		ID:          s.newID(),
		Amount:      *fields.Amount,
		Description: description,
		CategoryID:  category.ID,
		Type:        txnType,
		AccountType: accountType,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.storage.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.notify(ctx, model.EventTransactionCreated, txn.ID, txn)
	return &model.TransactionView{Transaction: *txn, CategoryName: category.Name}, nil
}

// GetTransaction returns a single transaction joined with its category name.
func (s *Service) GetTransaction(ctx context.Context, id string) (*model.TransactionView, error) {
	txn, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &model.TransactionView{Transaction: *txn}
	if category, err := s.storage.GetCategory(ctx, txn.CategoryID); err == nil {
		view.CategoryName = category.Name
	}
	return view, nil
}

// ListTransactions returns every transaction joined with its category name.
func (s *Service) ListTransactions(ctx context.Context) ([]model.TransactionView, error) {
	return s.listViews(ctx, service.TransactionFilter{})
}

// UpdateTransaction merges the supplied fields into an existing transaction.
// A changed category is checked again; on any failure the record is unchanged.
func (s *Service) UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) (*model.TransactionView, error) {
	txn, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	var missing, invalid []string

	if patch.Amount != nil {
		txn.Amount = *patch.Amount
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			missing = append(missing, fieldDescription)
		}
		txn.Description = description
	}
	if patch.Type != nil {
		txnType, err := model.ParseTransactionType(*patch.Type)
		if err != nil {
			invalid = append(invalid, fieldType)
		}
		txn.Type = txnType
	}
	if patch.AccountType != nil {
		accountType, err := model.ParseAccountType(*patch.AccountType)
		if err != nil {
			invalid = append(invalid, fieldAccountType)
		}
		txn.AccountType = accountType
	}
	if patch.Date != nil {
		if !model.ValidDate(*patch.Date) {
			invalid = append(invalid, fieldDate)
		}
		txn.Date = patch.Date.UTC()
	}
	categoryChanged := false
	if patch.CategoryID != nil {
		categoryID := strings.TrimSpace(*patch.CategoryID)
		if categoryID == "" {
			missing = append(missing, fieldCategory)
		}
		categoryChanged = categoryID != txn.CategoryID
		txn.CategoryID = categoryID
	}

	if err := fieldError(missing, invalid); err != nil {
		return nil, err
	}

	var categoryName string
	if categoryChanged {
		category, err := s.guard.Validate(ctx, txn.CategoryID)
		if err != nil {
			return nil, err
		}
		categoryName = category.Name
	} else if category, err := s.storage.GetCategory(ctx, txn.CategoryID); err == nil {
		categoryName = category.Name
	}

	txn.UpdatedAt = s.now()
	if err := s.storage.UpdateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.notify(ctx, model.EventTransactionUpdated, txn.ID, txn)
	return &model.TransactionView{Transaction: *txn, CategoryName: categoryName}, nil
}

// DeleteTransaction removes a transaction and returns the deleted record.
func (s *Service) DeleteTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	txn, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete transaction: %w", err)
	}

	s.notify(ctx, model.EventTransactionDeleted, id, txn)
	return txn, nil
}

// listViews loads transactions matching filter and joins category names.
func (s *Service) listViews(ctx context.Context, filter service.TransactionFilter) ([]model.TransactionView, error) {
	transactions, err := s.storage.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	categories, err := s.storage.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return joinCategoryNames(transactions, categories), nil
}

func joinCategoryNames(transactions []model.Transaction, categories []model.Category) []model.TransactionView {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	views := make([]model.TransactionView, 0, len(transactions))
	for _, txn := range transactions {
		views = append(views, model.TransactionView{
			Transaction:  txn,
			CategoryName: names[txn.CategoryID],
		})
	}
	return views
}

// fieldError reports missing and invalid fields as one ValidationError.
func fieldError(missing, invalid []string) error {
	switch {
	case len(missing) == 0 && len(invalid) == 0:
		return nil
	case len(invalid) == 0:
		return common.MissingFields(missing...)
	case len(missing) == 0:
		return common.NewValidationError("invalid field values", invalid...)
	default:
		return common.NewValidationError("missing or invalid fields", append(missing, invalid...)...)
	}
}
