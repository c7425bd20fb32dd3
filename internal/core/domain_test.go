package core

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	assert.Equal(t, Income, ParseKind("INCOME"))
	assert.Equal(t, Income, ParseKind(" income "))
	assert.Equal(t, Expense, ParseKind("EXPENSE"))
	assert.Equal(t, Expense, ParseKind(""))
	assert.Equal(t, Expense, ParseKind("TRANSFER"))
}

func TestNewTransactionNormalize(t *testing.T) {
	t.Run("expense keeps category and card label", func(t *testing.T) {
		tx, err := NewTransaction{
			Kind:         "EXPENSE",
			Amount:       "1800",
			Date:         "2026-01-10",
			Description:  " Aluguel ",
			CategoryID:   "cat-1",
			IsCreditCard: true,
			CardLabel:    "Nubank",
		}.Normalize()
		require.NoError(t, err)
		assert.Equal(t, Expense, tx.Kind)
		assert.True(t, tx.Amount.Equal(decimal.NewFromInt(1800)))
		assert.Equal(t, NewDate(2026, 1, 10), tx.Date)
		assert.Equal(t, "Aluguel", tx.Description)
		assert.Equal(t, "cat-1", tx.CategoryID)
		assert.Equal(t, "Nubank", tx.CardLabel)
		require.NoError(t, tx.Validate())
	})

	t.Run("income drops category", func(t *testing.T) {
		tx, err := NewTransaction{Kind: "INCOME", Amount: "6500", Date: "2026-01-05", CategoryID: "cat-1"}.Normalize()
		require.NoError(t, err)
		assert.Equal(t, Income, tx.Kind)
		assert.Empty(t, tx.CategoryID)
	})

	t.Run("card label needs credit flag", func(t *testing.T) {
		tx, err := NewTransaction{Amount: "10", Date: "2026-01-05", CardLabel: "Visa"}.Normalize()
		require.NoError(t, err)
		assert.Empty(t, tx.CardLabel)
	})

	t.Run("card label length is bounded", func(t *testing.T) {
		in := NewTransaction{Amount: "10", Date: "2026-01-05", IsCreditCard: true, CardLabel: strings.Repeat("ç", MaxCardLabelLength)}
		tx, err := in.Normalize()
		require.NoError(t, err)
		assert.Len(t, []rune(tx.CardLabel), MaxCardLabelLength)

		in.CardLabel += "x"
		_, err = in.Normalize()
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("invalid kind defaults to expense", func(t *testing.T) {
		tx, err := NewTransaction{Kind: "???", Amount: "10", Date: "2026-01-05"}.Normalize()
		require.NoError(t, err)
		assert.Equal(t, Expense, tx.Kind)
	})

	for name, in := range map[string]NewTransaction{
		"negative amount":  {Amount: "-1", Date: "2026-01-05"},
		"missing amount":   {Date: "2026-01-05"},
		"bad date":         {Amount: "1", Date: "2026-02-31"},
		"missing date":     {Amount: "1"},
		"amount too large": {Amount: "1000000000000", Date: "2026-01-05"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := in.Normalize()
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{Kind: Expense, Amount: decimal.NewFromInt(1), Date: NewDate(2026, 1, 1)}
	require.NoError(t, good.Validate())

	bads := []Transaction{
		{Kind: "OTHER", Amount: decimal.NewFromInt(1), Date: NewDate(2026, 1, 1)},
		{Kind: Expense, Amount: decimal.NewFromInt(-1), Date: NewDate(2026, 1, 1)},
		{Kind: Expense, Amount: decimal.NewFromInt(1)},
		{Kind: Income, Amount: decimal.NewFromInt(1), Date: NewDate(2026, 1, 1), CategoryID: "c"},
		{Kind: Expense, Amount: decimal.NewFromInt(1), Date: NewDate(2026, 1, 1), CardLabel: "x"},
	}
	for i, tx := range bads {
		assert.ErrorIs(t, tx.Validate(), ErrInvalidInput, "case %d", i)
	}
}

func TestNormalizeCategoryName(t *testing.T) {
	name, err := NormalizeCategoryName("  Moradia ")
	require.NoError(t, err)
	assert.Equal(t, "Moradia", name)

	_, err = NormalizeCategoryName("   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NormalizeCategoryName(strings.Repeat("á", MaxCategoryNameLength+1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NormalizeCategoryName(strings.Repeat("á", MaxCategoryNameLength))
	assert.NoError(t, err)
}

func TestTransactionFilterMatches(t *testing.T) {
	w, err := MonthWindow("2026-01")
	require.NoError(t, err)

	plain := Transaction{Kind: Expense, Date: NewDate(2026, 1, 10), CategoryID: "c1"}
	credit := Transaction{Kind: Expense, Date: NewDate(2026, 1, 11), IsCreditCard: true}
	recurring := Transaction{Kind: Expense, Date: NewDate(2026, 1, 12), RecurrenceGroupID: "g"}
	income := Transaction{Kind: Income, Date: NewDate(2026, 1, 13)}
	outside := Transaction{Kind: Expense, Date: NewDate(2026, 2, 1), CategoryID: "c1"}

	assert.True(t, TransactionFilter{Window: w}.Matches(plain))
	assert.False(t, TransactionFilter{Window: w}.Matches(outside))
	assert.True(t, TransactionFilter{Window: w, CategoryID: "c1"}.Matches(plain))
	assert.False(t, TransactionFilter{Window: w, CategoryID: "c1"}.Matches(income))
	assert.True(t, TransactionFilter{Window: w, CreditOnly: true}.Matches(credit))
	assert.False(t, TransactionFilter{Window: w, CreditOnly: true}.Matches(plain))
	assert.True(t, TransactionFilter{Window: w, RecurringOnly: true}.Matches(recurring))
	assert.False(t, TransactionFilter{Window: w, RecurringOnly: true}.Matches(plain))
}
