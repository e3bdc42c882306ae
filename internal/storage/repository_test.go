package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5hashankyadav/finance-tracker/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *SQLiteRepository) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), "alice", "alice@example.com", "USD")
	require.NoError(t, err)
	return u
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGetOrCreateCategoryIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	first, err := repo.GetOrCreateCategory(ctx, user.ID, "Food", core.KindExpense)
	require.NoError(t, err)
	second, err := repo.GetOrCreateCategory(ctx, user.ID, "Food", core.KindExpense)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	cats, err := repo.ListCategories(ctx, user.ID, core.KindExpense)
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	// Same name with the other kind is a distinct category.
	other, err := repo.GetOrCreateCategory(ctx, user.ID, "Food", core.KindIncome)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestGetOrCreateCategoryScopedToOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := newTestUser(t, repo)
	bob, err := repo.CreateUser(ctx, "bob", "bob@example.com", "EUR")
	require.NoError(t, err)

	a, err := repo.GetOrCreateCategory(ctx, alice.ID, "Rent", core.KindExpense)
	require.NoError(t, err)
	b, err := repo.GetOrCreateCategory(ctx, bob.ID, "Rent", core.KindExpense)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	cats, err := repo.ListCategories(ctx, alice.ID, "")
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestDeleteCategoryNullsTransactions(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	cat, err := repo.GetOrCreateCategory(ctx, user.ID, "Shopping", core.KindExpense)
	require.NoError(t, err)

	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		Owner:      user.ID,
		CategoryID: &cat.ID,
		Amount:     decimal.NewFromInt(25),
		Date:       date(2026, 9, 10),
		Currency:   "USD",
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteCategory(ctx, user.ID, cat.ID))

	listed, err := repo.ListTransactions(ctx, TransactionFilter{Owner: user.ID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, tx.ID, listed[0].ID)
	assert.Nil(t, listed[0].CategoryID, "dangling transactions stay valid but uncategorized")
}

func TestCreateTransactionRejectsNegativeAmount(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)

	_, err := repo.CreateTransaction(context.Background(), core.Transaction{
		Owner:    user.ID,
		Amount:   decimal.NewFromInt(-5),
		Date:     date(2026, 9, 10),
		Currency: "USD",
	})
	assert.ErrorIs(t, err, core.ErrNegativeAmount)
}

func TestSumAmountFilters(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	salary, err := repo.GetOrCreateCategory(ctx, user.ID, "Salary", core.KindIncome)
	require.NoError(t, err)
	food, err := repo.GetOrCreateCategory(ctx, user.ID, "Food", core.KindExpense)
	require.NoError(t, err)

	add := func(cat *core.Category, amount string, day int, currency string) {
		t.Helper()
		d, derr := decimal.NewFromString(amount)
		require.NoError(t, derr)
		var id *int64
		if cat != nil {
			id = &cat.ID
		}
		_, cerr := repo.CreateTransaction(ctx, core.Transaction{
			Owner:      user.ID,
			CategoryID: id,
			Amount:     d,
			Date:       date(2026, 9, day),
			Currency:   currency,
		})
		require.NoError(t, cerr)
	}

	add(&salary, "1000", 1, "USD")
	add(&food, "300", 2, "USD")
	add(&food, "200.50", 3, "USD")
	add(&food, "99", 4, "EUR")
	add(nil, "77", 5, "USD") // uncategorized

	income, err := repo.SumAmount(ctx, TransactionFilter{Owner: user.ID, Kind: core.KindIncome})
	require.NoError(t, err)
	assert.True(t, income.Equal(decimal.NewFromInt(1000)), "income = %s", income)

	expenses, err := repo.SumAmount(ctx, TransactionFilter{Owner: user.ID, Kind: core.KindExpense})
	require.NoError(t, err)
	assert.Equal(t, "599.5", expenses.String())

	usdFood, err := repo.SumAmount(ctx, TransactionFilter{Owner: user.ID, CategoryID: &food.ID, Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "500.5", usdFood.String())

	fromDay3, err := repo.SumAmount(ctx, TransactionFilter{Owner: user.ID, Kind: core.KindExpense, From: date(2026, 9, 3)})
	require.NoError(t, err)
	assert.Equal(t, "299.5", fromDay3.String())

	// No matches sums to zero, not an error.
	none, err := repo.SumAmount(ctx, TransactionFilter{Owner: user.ID + 99})
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}

func TestListTransactionsOrderAndLimit(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	for day := 1; day <= 7; day++ {
		_, err := repo.CreateTransaction(ctx, core.Transaction{
			Owner:    user.ID,
			Amount:   decimal.NewFromInt(int64(day)),
			Date:     date(2026, 9, day),
			Currency: "USD",
		})
		require.NoError(t, err)
	}

	recent, err := repo.ListTransactions(ctx, TransactionFilter{Owner: user.ID, Limit: 5, Descending: true})
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, date(2026, 9, 7), recent[0].Date)
	assert.Equal(t, date(2026, 9, 3), recent[4].Date)

	asc, err := repo.ListTransactions(ctx, TransactionFilter{Owner: user.ID})
	require.NoError(t, err)
	require.Len(t, asc, 7)
	assert.Equal(t, date(2026, 9, 1), asc[0].Date)
}

func TestTransactionEditAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	food, err := repo.GetOrCreateCategory(ctx, user.ID, "Food", core.KindExpense)
	require.NoError(t, err)

	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		Owner:      user.ID,
		CategoryID: &food.ID,
		Amount:     decimal.NewFromInt(25),
		Date:       date(2026, 9, 10),
		Currency:   "USD",
	})
	require.NoError(t, err)

	tx.Amount = decimal.RequireFromString("31.80")
	tx.Description = "Groceries, corrected"
	require.NoError(t, repo.UpdateTransaction(ctx, tx))

	listed, err := repo.ListTransactions(ctx, TransactionFilter{Owner: user.ID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "31.8", listed[0].Amount.String())
	assert.Equal(t, "Groceries, corrected", listed[0].Description)

	// Edits cannot turn an amount negative.
	tx.Amount = decimal.NewFromInt(-5)
	assert.ErrorIs(t, repo.UpdateTransaction(ctx, tx), core.ErrNegativeAmount)

	require.NoError(t, repo.DeleteTransaction(ctx, user.ID, tx.ID))
	listed, err = repo.ListTransactions(ctx, TransactionFilter{Owner: user.ID})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestBudgetMonthNormalization(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo)
	ctx := context.Background()

	cat, err := repo.GetOrCreateCategory(ctx, user.ID, "Rent", core.KindExpense)
	require.NoError(t, err)

	created, err := repo.CreateBudget(ctx, core.Budget{
		Owner:      user.ID,
		CategoryID: cat.ID,
		Amount:     decimal.NewFromInt(500),
		Month:      date(2026, 9, 17), // mid-month collapses to the 1st
	})
	require.NoError(t, err)
	assert.Equal(t, date(2026, 9, 1), created.Month)

	// Lookup with any day of that month finds it.
	found, err := repo.FindBudget(ctx, user.ID, cat.ID, date(2026, 9, 30))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Amount.Equal(decimal.NewFromInt(500)))

	// A missing budget is a nil, not an error.
	missing, err := repo.FindBudget(ctx, user.ID, cat.ID, date(2026, 10, 1))
	require.NoError(t, err)
	assert.Nil(t, missing)

	// The (owner, category, month) triple is unique.
	_, err = repo.CreateBudget(ctx, core.Budget{
		Owner:      user.ID,
		CategoryID: cat.ID,
		Amount:     decimal.NewFromInt(700),
		Month:      date(2026, 9, 1),
	})
	assert.Error(t, err)
}

func TestUserRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "carol", "carol@example.com", "CHF")
	require.NoError(t, err)

	got, err := repo.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	byName, err := repo.GetUserByUsername(ctx, "carol")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, created.ID, byName.ID)

	missing, err := repo.GetUserByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	created.Email = "carol@home.example"
	created.Currency = "EUR"
	require.NoError(t, repo.UpdateUser(ctx, created))
	updated, err := repo.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "EUR", updated.Currency)
}
