package sheets

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Philos250/TransactiTrack/internal/model"
)

// TransactionRow is one line of the transaction detail table.
type TransactionRow struct {
	Date        time.Time
	Description string
	Category    string
	Type        model.TransactionType
	AccountType model.AccountType
	Amount      decimal.Decimal
}

// CategoryRow is one line of the budget table.
type CategoryRow struct {
	Name             string
	Budget           decimal.Decimal
	Spent            decimal.Decimal
	Remaining        decimal.Decimal
	TransactionCount int
	OverBudget       bool
}

// AccountRow counts transactions per account type.
type AccountRow struct {
	AccountType model.AccountType
	Count       int
}

// TabData holds everything written to the report sheet.
type TabData struct {
	DateRange    model.DateRange
	Income       decimal.Decimal
	Expense      decimal.Decimal
	Net          decimal.Decimal
	TotalBudget  decimal.Decimal
	BudgetLeft   decimal.Decimal
	Transactions []TransactionRow
	Categories   []CategoryRow
	Accounts     []AccountRow
}

// NewTabData flattens a report into sheet rows. Transactions keep the
// report's ascending date order and account types follow their declared order.
func NewTabData(report *model.Report) TabData {
	summary := report.Summary
	data := TabData{
		DateRange:    report.Range,
		Income:       summary.Income,
		Expense:      summary.Expense,
		Net:          summary.Net,
		TotalBudget:  summary.TotalBudget,
		BudgetLeft:   summary.BudgetLeft,
		Transactions: make([]TransactionRow, 0, len(report.Transactions)),
		Categories:   make([]CategoryRow, 0, len(summary.ByCategory)),
	}

	for _, txn := range report.Transactions {
		data.Transactions = append(data.Transactions, TransactionRow{
			Date:        txn.Date,
			Description: txn.Description,
			Category:    txn.CategoryName,
			Type:        txn.Type,
			AccountType: txn.AccountType,
			Amount:      txn.Amount,
		})
	}
	sort.SliceStable(data.Transactions, func(i, j int) bool {
		return data.Transactions[i].Date.Before(data.Transactions[j].Date)
	})

	for _, usage := range summary.ByCategory {
		data.Categories = append(data.Categories, CategoryRow{
			Name:             usage.CategoryName,
			Budget:           usage.Budget,
			Spent:            usage.Spent,
			Remaining:        usage.Remaining,
			TransactionCount: usage.TransactionCount,
			OverBudget:       usage.OverBudget,
		})
	}

	for _, accountType := range model.AccountTypes {
		if count := summary.ByAccountType[accountType]; count > 0 {
			data.Accounts = append(data.Accounts, AccountRow{AccountType: accountType, Count: count})
		}
	}

	return data
}
