package aggregate

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Philos250/TransactiTrack/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func txn(id, category string, txnType model.TransactionType, account model.AccountType, amount string) model.Transaction {
	return model.Transaction{
		ID:          id,
		CategoryID:  category,
		Type:        txnType,
		AccountType: account,
		Amount:      d(amount),
	}
}

var (
	food   = model.Category{ID: "c-food", Name: "Food", Budget: d("10000")}
	rent   = model.Category{ID: "c-rent", Name: "Rent", Budget: d("500")}
	salary = model.Category{ID: "c-salary", Name: "Salary"}

	sample = []model.Transaction{
		txn("t1", "c-food", model.TransactionTypeExpense, model.AccountTypeCash, "2500"),
		txn("t2", "c-rent", model.TransactionTypeExpense, model.AccountTypeBank, "600"),
		txn("t3", "c-salary", model.TransactionTypeIncome, model.AccountTypeBank, "3000"),
		txn("t4", "c-food", model.TransactionTypeExpense, model.AccountTypeMobileMoney, "0"),
		txn("t5", "c-salary", model.TransactionTypeIncome, model.AccountTypeMobileMoney, "-20.5"),
	}
)

func TestTotalByType(t *testing.T) {
	tests := []struct {
		name         string
		transactions []model.Transaction
		txnType      model.TransactionType
		want         string
	}{
		{name: "empty income", transactions: nil, txnType: model.TransactionTypeIncome, want: "0"},
		{name: "empty expense", transactions: []model.Transaction{}, txnType: model.TransactionTypeExpense, want: "0"},
		{name: "expenses", transactions: sample, txnType: model.TransactionTypeExpense, want: "3100"},
		{name: "income with negative amount", transactions: sample, txnType: model.TransactionTypeIncome, want: "2979.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalByType(tt.transactions, tt.txnType)
			assert.True(t, d(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestTotalBudget(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(TotalBudget(nil)))
	assert.True(t, d("10500").Equal(TotalBudget([]model.Category{food, rent, salary})))
}

func TestBudgetLeft(t *testing.T) {
	t.Run("single expense against food budget", func(t *testing.T) {
		got := BudgetLeft([]model.Category{food}, sample[:1])
		assert.True(t, d("7500").Equal(got), got.String())
	})

	t.Run("overspend goes negative", func(t *testing.T) {
		got := BudgetLeft([]model.Category{rent}, sample[1:2])
		assert.True(t, d("-100").Equal(got), got.String())
	})

	t.Run("income does not add to budget left", func(t *testing.T) {
		got := BudgetLeft([]model.Category{food}, sample[2:3])
		assert.True(t, d("10000").Equal(got), got.String())
	})
}

func TestCountByAccountType(t *testing.T) {
	got := CountByAccountType(sample)
	assert.Equal(t, map[model.AccountType]int{
		model.AccountTypeCash:        1,
		model.AccountTypeBank:        2,
		model.AccountTypeMobileMoney: 2,
	}, got)

	assert.Empty(t, CountByAccountType(nil))
}

func TestCategoryUsage(t *testing.T) {
	orphan := txn("t6", "c-deleted", model.TransactionTypeExpense, model.AccountTypeCash, "99")
	usage := CategoryUsage([]model.Category{salary, rent, food}, append(sample[:len(sample):len(sample)], orphan))

	require.Len(t, usage, 3)
	assert.Equal(t, []string{"Food", "Rent", "Salary"}, []string{usage[0].CategoryName, usage[1].CategoryName, usage[2].CategoryName})

	assert.True(t, d("2500").Equal(usage[0].Spent))
	assert.True(t, d("7500").Equal(usage[0].Remaining))
	assert.Equal(t, 2, usage[0].TransactionCount)
	assert.False(t, usage[0].OverBudget)

	assert.True(t, d("-100").Equal(usage[1].Remaining))
	assert.True(t, usage[1].OverBudget)

	assert.True(t, decimal.Zero.Equal(usage[2].Spent))
	assert.Equal(t, 2, usage[2].TransactionCount)
}

func TestSummarize(t *testing.T) {
	summary := Summarize([]model.Category{food, rent, salary}, sample)

	assert.True(t, d("2979.5").Equal(summary.Income))
	assert.True(t, d("3100").Equal(summary.Expense))
	assert.True(t, d("-120.5").Equal(summary.Net))
	assert.True(t, d("10500").Equal(summary.TotalBudget))
	assert.True(t, d("7400").Equal(summary.BudgetLeft))
	assert.Equal(t, 5, summary.Transactions)
	assert.Len(t, summary.ByCategory, 3)
}

func TestAggregatesAreOrderIndependentAndRepeatable(t *testing.T) {
	categories := []model.Category{food, rent, salary}
	want := Summarize(categories, sample)

	shuffled := make([]model.Transaction, len(sample))
	copy(shuffled, sample)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 10; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := Summarize(categories, shuffled)
		assert.True(t, want.Income.Equal(got.Income))
		assert.True(t, want.BudgetLeft.Equal(got.BudgetLeft))
		assert.Equal(t, want.ByAccountType, got.ByAccountType)
		require.Len(t, got.ByCategory, len(want.ByCategory))
		for j := range want.ByCategory {
			assert.Equal(t, want.ByCategory[j].CategoryID, got.ByCategory[j].CategoryID)
			assert.True(t, want.ByCategory[j].Spent.Equal(got.ByCategory[j].Spent))
			assert.Equal(t, want.ByCategory[j].TransactionCount, got.ByCategory[j].TransactionCount)
		}
	}

	assert.True(t, TotalByType(sample, model.TransactionTypeExpense).Equal(TotalByType(sample, model.TransactionTypeExpense)))
	assert.Equal(t, "t1", sample[0].ID, "input must not be reordered")
}
