// Package storetest holds behaviour checks shared by every storage.Store
// implementation.
package storetest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
	"saldo/internal/storage"
)

// Factory returns an empty, migrated store. Cleanup is the factory's job.
type Factory func(t *testing.T) storage.Store

// Run checks a fresh store from newStore against every storage.Store rule.
func Run(t *testing.T, newStore Factory) {
	t.Run("Owners", func(t *testing.T) { testOwners(t, newStore(t)) })
	t.Run("Categories", func(t *testing.T) { testCategories(t, newStore(t)) })
	t.Run("DeleteCategoryClearsReferences", func(t *testing.T) { testDeleteCategory(t, newStore(t)) })
	t.Run("InsertAndQuery", func(t *testing.T) { testInsertAndQuery(t, newStore(t)) })
	t.Run("QueryFilters", func(t *testing.T) { testQueryFilters(t, newStore(t)) })
	t.Run("BatchIsAtomic", func(t *testing.T) { testBatchAtomic(t, newStore(t)) })
	t.Run("DeleteTransaction", func(t *testing.T) { testDeleteTransaction(t, newStore(t)) })
	t.Run("DeleteTransactionGroup", func(t *testing.T) { testDeleteGroup(t, newStore(t)) })
}

func mustOwner(t *testing.T, s storage.Store, email string) core.Owner {
	t.Helper()
	o := core.Owner{ID: uuid.NewString(), Email: email}
	require.NoError(t, s.InsertOwner(context.Background(), o))
	return o
}

func mustCategory(t *testing.T, s storage.Store, ownerID, name string) core.Category {
	t.Helper()
	c := core.Category{ID: uuid.NewString(), OwnerID: ownerID, Name: name}
	require.NoError(t, s.InsertCategory(context.Background(), c))
	return c
}

func tx(ownerID string, kind core.Kind, amount, date string) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Kind:    kind,
		Amount:  decimal.RequireFromString(amount),
		Date:    d,
	}
}

func month(t *testing.T, m string) core.TransactionFilter {
	t.Helper()
	w, err := core.MonthWindow(m)
	require.NoError(t, err)
	return core.TransactionFilter{Window: w}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func testOwners(t *testing.T, s storage.Store) {
	ctx := context.Background()

	_, err := s.FindOwnerByEmail(ctx, "demo@local")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	o := mustOwner(t, s, "demo@local")
	got, err := s.FindOwnerByEmail(ctx, "demo@local")
	require.NoError(t, err)
	assert.Equal(t, o, got)

	err = s.InsertOwner(ctx, core.Owner{ID: uuid.NewString(), Email: "demo@local"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	require.NoError(t, s.Ping(ctx))
}

func testCategories(t *testing.T, s storage.Store) {
	ctx := context.Background()
	a := mustOwner(t, s, "a@local")
	b := mustOwner(t, s, "b@local")

	cats, err := s.ListCategories(ctx, a.ID)
	require.NoError(t, err)
	assert.NotNil(t, cats)
	assert.Empty(t, cats)

	mustCategory(t, s, a.ID, "Transporte")
	mustCategory(t, s, a.ID, "Alimentação")
	mustCategory(t, s, a.ID, "Moradia")

	err = s.InsertCategory(ctx, core.Category{ID: uuid.NewString(), OwnerID: a.ID, Name: "Moradia"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// names are unique per owner only
	mustCategory(t, s, b.ID, "Moradia")

	cats, err = s.ListCategories(ctx, a.ID)
	require.NoError(t, err)
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
		assert.Equal(t, a.ID, c.OwnerID)
	}
	assert.Equal(t, []string{"Alimentação", "Moradia", "Transporte"}, names)

	cats, err = s.ListCategories(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func testDeleteCategory(t *testing.T, s storage.Store) {
	ctx := context.Background()
	o := mustOwner(t, s, "demo@local")
	other := mustOwner(t, s, "other@local")
	food := mustCategory(t, s, o.ID, "Alimentação")
	foreign := mustCategory(t, s, other.ID, "Lazer")

	e := tx(o.ID, core.Expense, "50.00", "2026-03-05")
	e.CategoryID = food.ID
	require.NoError(t, s.InsertTransactions(ctx, []core.Transaction{e}))

	// wrong owner: nothing happens
	require.NoError(t, s.DeleteCategory(ctx, o.ID, foreign.ID))
	cats, err := s.ListCategories(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	require.NoError(t, s.DeleteCategory(ctx, o.ID, food.ID))
	require.NoError(t, s.DeleteCategory(ctx, o.ID, food.ID), "deleting twice is a no-op")

	cats, err = s.ListCategories(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, cats)

	txs, err := s.QueryTransactions(ctx, o.ID, month(t, "2026-03"))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, e.ID, txs[0].ID)
	assert.Empty(t, txs[0].CategoryID)
}

func testInsertAndQuery(t *testing.T, s storage.Store) {
	ctx := context.Background()
	o := mustOwner(t, s, "demo@local")
	other := mustOwner(t, s, "other@local")
	cat := mustCategory(t, s, o.ID, "Moradia")

	rent := tx(o.ID, core.Expense, "1800.00", "2026-03-05")
	rent.CategoryID = cat.ID
	rent.Description = "Aluguel"
	rent.IsCreditCard = true
	rent.CardLabel = "Nubank"
	salary := tx(o.ID, core.Income, "6500.00", "2026-03-01")
	coffee := tx(o.ID, core.Expense, "0.10", "2026-03-31")
	lastMonth := tx(o.ID, core.Expense, "10.00", "2026-02-28")
	nextMonth := tx(o.ID, core.Expense, "10.00", "2026-04-01")
	foreign := tx(other.ID, core.Expense, "99.00", "2026-03-10")

	require.NoError(t, s.InsertTransactions(ctx, []core.Transaction{rent, salary, coffee, lastMonth, nextMonth}))
	require.NoError(t, s.InsertTransactions(ctx, []core.Transaction{foreign}))
	require.NoError(t, s.InsertTransactions(ctx, nil))

	got, err := s.QueryTransactions(ctx, o.ID, month(t, "2026-03"))
	require.NoError(t, err)
	assert.Equal(t, []string{coffee.ID, rent.ID, salary.ID}, ids(got))

	r := got[1]
	assert.Equal(t, core.Expense, r.Kind)
	assert.True(t, r.Amount.Equal(decimal.RequireFromString("1800")), "amount %s", r.Amount)
	assert.Equal(t, "2026-03-05", r.Date.String())
	assert.Equal(t, "Aluguel", r.Description)
	assert.Equal(t, cat.ID, r.CategoryID)
	assert.True(t, r.IsCreditCard)
	assert.Equal(t, "Nubank", r.CardLabel)
	assert.Empty(t, r.RecurrenceGroupID)
	assert.Zero(t, r.RecurrenceCount)

	assert.Equal(t, "0.10", core.FormatAmount(got[0].Amount))

	empty, err := s.QueryTransactions(ctx, o.ID, month(t, "2025-01"))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func testQueryFilters(t *testing.T, s storage.Store) {
	ctx := context.Background()
	o := mustOwner(t, s, "demo@local")
	cat := mustCategory(t, s, o.ID, "Moradia")

	base := tx(o.ID, core.Expense, "100.00", "2026-01-10")
	base.CategoryID = cat.ID
	series := core.Expand(base, 3)

	card := tx(o.ID, core.Expense, "20.00", "2026-02-03")
	card.IsCreditCard = true
	income := tx(o.ID, core.Income, "10.00", "2026-02-04")

	require.NoError(t, s.InsertTransactions(ctx, series))
	require.NoError(t, s.InsertTransactions(ctx, []core.Transaction{card, income}))

	f := month(t, "2026-02")
	all, err := s.QueryTransactions(ctx, o.ID, f)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byCat := f
	byCat.CategoryID = cat.ID
	got, err := s.QueryTransactions(ctx, o.ID, byCat)
	require.NoError(t, err)
	assert.Equal(t, []string{series[1].ID}, ids(got))
	assert.Equal(t, series[0].RecurrenceGroupID, got[0].RecurrenceGroupID)
	assert.Equal(t, 3, got[0].RecurrenceCount)

	credit := f
	credit.CreditOnly = true
	got, err = s.QueryTransactions(ctx, o.ID, credit)
	require.NoError(t, err)
	assert.Equal(t, []string{card.ID}, ids(got))

	recurring := f
	recurring.RecurringOnly = true
	got, err = s.QueryTransactions(ctx, o.ID, recurring)
	require.NoError(t, err)
	assert.Equal(t, []string{series[1].ID}, ids(got))

	both := f
	both.CreditOnly = true
	both.RecurringOnly = true
	got, err = s.QueryTransactions(ctx, o.ID, both)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testBatchAtomic(t *testing.T, s storage.Store) {
	ctx := context.Background()
	o := mustOwner(t, s, "demo@local")

	good := tx(o.ID, core.Expense, "10.00", "2026-05-01")
	bad := tx(o.ID, core.Expense, "10.00", "2026-05-02")
	bad.CategoryID = uuid.NewString()

	err := s.InsertTransactions(ctx, []core.Transaction{good, bad})
	assert.ErrorIs(t, err, storage.ErrInvalidReference)

	dup := tx(o.ID, core.Expense, "10.00", "2026-05-03")
	err = s.InsertTransactions(ctx, []core.Transaction{dup, dup})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := s.QueryTransactions(ctx, o.ID, month(t, "2026-05"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testDeleteTransaction(t *testing.T, s storage.Store) {
	ctx := context.Background()
	o := mustOwner(t, s, "demo@local")
	other := mustOwner(t, s, "other@local")

	a := tx(o.ID, core.Expense, "10.00", "2026-06-01")
	b := tx(o.ID, core.Expense, "20.00", "2026-06-02")
	require.NoError(t, s.InsertTransactions(ctx, []core.Transaction{a, b}))

	removed, err := s.DeleteTransaction(ctx, other.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, removed, "other owners cannot delete")

	removed, err = s.DeleteTransaction(ctx, o.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.DeleteTransaction(ctx, o.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	got, err := s.QueryTransactions(ctx, o.ID, month(t, "2026-06"))
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(got))
}

func testDeleteGroup(t *testing.T, s storage.Store) {
	ctx := context.Background()
	o := mustOwner(t, s, "demo@local")

	series := core.Expand(tx(o.ID, core.Expense, "50.00", "2026-01-31"), 4)
	single := tx(o.ID, core.Expense, "5.00", "2026-02-10")
	require.NoError(t, s.InsertTransactions(ctx, series))
	require.NoError(t, s.InsertTransactions(ctx, []core.Transaction{single}))

	n, err := s.DeleteTransactionGroup(ctx, o.ID, uuid.NewString())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.DeleteTransactionGroup(ctx, o.ID, series[0].RecurrenceGroupID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	for _, m := range []string{"2026-01", "2026-02", "2026-03", "2026-04"} {
		got, err := s.QueryTransactions(ctx, o.ID, month(t, m))
		require.NoError(t, err)
		for _, g := range got {
			assert.Empty(t, g.RecurrenceGroupID, "month %s still has group rows", m)
		}
	}

	got, err := s.QueryTransactions(ctx, o.ID, month(t, "2026-02"))
	require.NoError(t, err)
	assert.Equal(t, []string{single.ID}, ids(got))
}
