// Package model defines the ledger records and the projections computed from them.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether money came in or went out.
type TransactionType string

const (
	// TransactionTypeIncome represents money received.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeExpense represents money spent.
	TransactionTypeExpense TransactionType = "expense"
)

// TransactionTypes lists every valid transaction type.
var TransactionTypes = []TransactionType{TransactionTypeIncome, TransactionTypeExpense}

// ParseTransactionType converts user input into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(s))); t {
	case TransactionTypeIncome, TransactionTypeExpense:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// AccountType is the account a transaction was paid from or into.
type AccountType string

const (
	// AccountTypeBank is a bank account.
	AccountTypeBank AccountType = "bank"
	// AccountTypeMobileMoney is a mobile money wallet.
	AccountTypeMobileMoney AccountType = "mobile money"
	// AccountTypeCash is cash in hand.
	AccountTypeCash AccountType = "cash"
)

// AccountTypes lists every valid account type.
var AccountTypes = []AccountType{AccountTypeBank, AccountTypeMobileMoney, AccountTypeCash}

// ParseAccountType converts user input into an AccountType.
// "mobile_money" and "mobile-money" are accepted as spellings of "mobile money".
func ParseAccountType(s string) (AccountType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
	switch t := AccountType(normalized); t {
	case AccountTypeBank, AccountTypeMobileMoney, AccountTypeCash:
		return t, nil
	default:
		return "", fmt.Errorf("unknown account type %q", s)
	}
}

// Transaction dates must fall in [MinDate, MaxDate).
var (
	MinDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(2200, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// ValidDate reports whether t lies inside the supported date window.
// The zero time does not.
func ValidDate(t time.Time) bool {
	return !t.Before(MinDate) && t.Before(MaxDate)
}

// Transaction is a single dated monetary event tied to exactly one category.
type Transaction struct {
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	ID          string          `json:"id"`
	Description string          `json:"description"`
	CategoryID  string          `json:"category"`
	Type        TransactionType `json:"type"`
	AccountType AccountType     `json:"accountType"`
	Amount      decimal.Decimal `json:"amount"`
}

// TransactionView is a transaction joined with its category name at read time.
type TransactionView struct {
	Transaction
	CategoryName string `json:"categoryName"`
}

// TransactionFields holds the caller-supplied fields for a new transaction.
// Amount and Date are pointers so that absence can be told apart from zero.
type TransactionFields struct {
	Amount      *decimal.Decimal `json:"amount"`
	Date        *time.Time       `json:"date"`
	Description string           `json:"description"`
	CategoryID  string           `json:"category"`
	Type        string           `json:"type"`
	AccountType string           `json:"accountType"`
}

// TransactionPatch holds the fields to merge into an existing transaction.
// A nil field is left untouched.
type TransactionPatch struct {
	Amount      *decimal.Decimal `json:"amount"`
	Date        *time.Time       `json:"date"`
	Description *string          `json:"description"`
	CategoryID  *string          `json:"category"`
	Type        *string          `json:"type"`
	AccountType *string          `json:"accountType"`
}
