package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateRange is an inclusive time interval.
type DateRange struct {
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

// Contains reports whether t lies inside the inclusive range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// CategoryUsage describes how much of a category's budget has been spent.
type CategoryUsage struct {
	CategoryID       string          `json:"categoryId"`
	CategoryName     string          `json:"categoryName"`
	Budget           decimal.Decimal `json:"budget"`
	Spent            decimal.Decimal `json:"spent"`
	Remaining        decimal.Decimal `json:"remaining"`
	TransactionCount int             `json:"transactionCount"`
	OverBudget       bool            `json:"overBudget"`
}

// Summary aggregates a set of transactions against a set of categories.
type Summary struct {
	ByAccountType map[AccountType]int `json:"byAccountType"`
	ByCategory    []CategoryUsage     `json:"byCategory"`
	Income        decimal.Decimal     `json:"income"`
	Expense       decimal.Decimal     `json:"expense"`
	Net           decimal.Decimal     `json:"net"`
	TotalBudget   decimal.Decimal     `json:"totalBudget"`
	BudgetLeft    decimal.Decimal     `json:"budgetLeft"`
	Transactions  int                 `json:"transactions"`
}

// Report is a date-range report together with its summary.
type Report struct {
	Range        DateRange         `json:"range"`
	Transactions []TransactionView `json:"transactions"`
	Summary      Summary           `json:"summary"`
}
