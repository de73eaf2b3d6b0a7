package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/model"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(SubtleColor)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// FormatAmount renders an amount with two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// RenderCategories renders categories as a table, resolving parent names.
func RenderCategories(categories []model.Category) string {
	if len(categories) == 0 {
		return SubtleStyle.Render("No categories yet.")
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	t := newTable("ID", "Name", "Parent", "Budget", "Description")
	for _, c := range categories {
		parent := ""
		if c.HasParent() {
			parent = names[*c.ParentID]
		}
		t.Row(c.ID, c.Name, parent, FormatAmount(c.Budget), c.Description)
	}
	return t.String()
}

// RenderTransactions renders transactions with their category names.
func RenderTransactions(transactions []model.TransactionView) string {
	if len(transactions) == 0 {
		return SubtleStyle.Render("No transactions found.")
	}

	t := newTable("ID", "Date", "Description", "Category", "Type", "Account", "Amount")
	for _, txn := range transactions {
		t.Row(
			txn.ID,
			txn.Date.Format(common.DateOnly),
			txn.Description,
			txn.CategoryName,
			string(txn.Type),
			string(txn.AccountType),
			FormatAmount(txn.Amount),
		)
	}
	return t.String()
}

// RenderUsage renders per-category budget consumption. Overspent rows are
// highlighted.
func RenderUsage(usage []model.CategoryUsage) string {
	if len(usage) == 0 {
		return SubtleStyle.Render("No categories yet.")
	}

	t := newTable("Category", "Transactions", "Budget", "Spent", "Remaining")
	for _, u := range usage {
		remaining := FormatAmount(u.Remaining)
		if u.OverBudget {
			remaining = ErrorStyle.Render(remaining)
		}
		t.Row(u.CategoryName, fmt.Sprint(u.TransactionCount), FormatAmount(u.Budget), FormatAmount(u.Spent), remaining)
	}
	return t.String()
}

// RenderSummary renders report totals in a box.
func RenderSummary(title string, summary *model.Summary) string {
	var b strings.Builder

	line := func(label, value string) {
		fmt.Fprintf(&b, "%-14s %s\n", BoldStyle.Render(label), value)
	}

	line("Transactions", fmt.Sprint(summary.Transactions))
	line("Income", SuccessStyle.Render(FormatAmount(summary.Income)))
	line("Expense", WarningStyle.Render(FormatAmount(summary.Expense)))
	line("Net", FormatAmount(summary.Net))
	line("Total budget", FormatAmount(summary.TotalBudget))

	left := FormatAmount(summary.BudgetLeft)
	if summary.BudgetLeft.IsNegative() {
		left = ErrorStyle.Render(left)
	}
	line("Budget left", left)

	for _, accountType := range model.AccountTypes {
		if count := summary.ByAccountType[accountType]; count > 0 {
			line(string(accountType), fmt.Sprint(count))
		}
	}

	return RenderBox(ChartIcon+" "+title, strings.TrimRight(b.String(), "\n"))
}
