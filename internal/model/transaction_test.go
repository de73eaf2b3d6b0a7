package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		in      string
		want    TransactionType
		wantErr bool
	}{
		{in: "income", want: TransactionTypeIncome},
		{in: "expense", want: TransactionTypeExpense},
		{in: " Expense ", want: TransactionTypeExpense},
		{in: "transfer", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTransactionType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAccountType(t *testing.T) {
	tests := []struct {
		in      string
		want    AccountType
		wantErr bool
	}{
		{in: "bank", want: AccountTypeBank},
		{in: "cash", want: AccountTypeCash},
		{in: "mobile money", want: AccountTypeMobileMoney},
		{in: "mobile_money", want: AccountTypeMobileMoney},
		{in: "Mobile-Money", want: AccountTypeMobileMoney},
		{in: "credit card", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAccountType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, r.Contains(r.Start), "start is inclusive")
	assert.True(t, r.Contains(r.End), "end is inclusive")
	assert.True(t, r.Contains(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(r.Start.Add(-time.Nanosecond)))
	assert.False(t, r.Contains(r.End.Add(time.Nanosecond)))
}

func TestCategoryPatchIsEmpty(t *testing.T) {
	assert.True(t, CategoryPatch{}.IsEmpty())

	name := "Food"
	assert.False(t, CategoryPatch{Name: &name}.IsEmpty())
}

func TestValidDate(t *testing.T) {
	tests := []struct {
		date time.Time
		name string
		want bool
	}{
		{name: "zero", date: time.Time{}},
		{name: "typo year", date: time.Date(24, time.January, 5, 0, 0, 0, 0, time.UTC)},
		{name: "before window", date: MinDate.Add(-time.Nanosecond)},
		{name: "first instant", date: MinDate, want: true},
		{name: "ordinary", date: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC), want: true},
		{name: "last instant", date: MaxDate.Add(-time.Nanosecond), want: true},
		{name: "end of window", date: MaxDate},
		{name: "far future", date: time.Date(2300, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidDate(tt.date))
		})
	}
}
