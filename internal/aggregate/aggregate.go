// Package aggregate computes totals and budget figures over ledger snapshots.
//
// Every function is pure: it reads only its arguments, never mutates them and
// returns the same result regardless of input order.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Philos250/TransactiTrack/internal/model"
)

// TotalByType sums the amounts of transactions with the given type.
// An empty input yields zero.
func TotalByType(transactions []model.Transaction, txnType model.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for i := range transactions {
		if transactions[i].Type == txnType {
			total = total.Add(transactions[i].Amount)
		}
	}
	return total
}

// TotalBudget sums the budgets of all categories.
func TotalBudget(categories []model.Category) decimal.Decimal {
	total := decimal.Zero
	for i := range categories {
		total = total.Add(categories[i].Budget)
	}
	return total
}

// BudgetLeft is the total budget minus total expenses. It is not clamped and
// goes negative on overspend.
func BudgetLeft(categories []model.Category, transactions []model.Transaction) decimal.Decimal {
	return TotalBudget(categories).Sub(TotalByType(transactions, model.TransactionTypeExpense))
}

// CountByAccountType counts transactions per observed account type.
func CountByAccountType(transactions []model.Transaction) map[model.AccountType]int {
	counts := make(map[model.AccountType]int)
	for i := range transactions {
		counts[transactions[i].AccountType]++
	}
	return counts
}

// CategoryUsage reports budget consumption for every category, sorted by name.
// Transactions referencing an unknown category are ignored.
func CategoryUsage(categories []model.Category, transactions []model.Transaction) []model.CategoryUsage {
	index := make(map[string]int, len(categories))
	usage := make([]model.CategoryUsage, len(categories))
	for i := range categories {
		index[categories[i].ID] = i
		usage[i] = model.CategoryUsage{
			CategoryID:   categories[i].ID,
			CategoryName: categories[i].Name,
			Budget:       categories[i].Budget,
			Spent:        decimal.Zero,
		}
	}

	for i := range transactions {
		pos, ok := index[transactions[i].CategoryID]
		if !ok {
			continue
		}
		usage[pos].TransactionCount++
		if transactions[i].Type == model.TransactionTypeExpense {
			usage[pos].Spent = usage[pos].Spent.Add(transactions[i].Amount)
		}
	}

	for i := range usage {
		usage[i].Remaining = usage[i].Budget.Sub(usage[i].Spent)
		usage[i].OverBudget = usage[i].Remaining.IsNegative()
	}

	sort.SliceStable(usage, func(i, j int) bool {
		if usage[i].CategoryName != usage[j].CategoryName {
			return usage[i].CategoryName < usage[j].CategoryName
		}
		return usage[i].CategoryID < usage[j].CategoryID
	})
	return usage
}

// Summarize combines every aggregate into a single summary.
func Summarize(categories []model.Category, transactions []model.Transaction) model.Summary {
	income := TotalByType(transactions, model.TransactionTypeIncome)
	expense := TotalByType(transactions, model.TransactionTypeExpense)
	totalBudget := TotalBudget(categories)

	return model.Summary{
		Income:        income,
		Expense:       expense,
		Net:           income.Sub(expense),
		TotalBudget:   totalBudget,
		BudgetLeft:    totalBudget.Sub(expense),
		ByAccountType: CountByAccountType(transactions),
		ByCategory:    CategoryUsage(categories, transactions),
		Transactions:  len(transactions),
	}
}
