package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5hashankyadav/finance-tracker/internal/core"
	"github.com/5hashankyadav/finance-tracker/internal/log"
	"github.com/5hashankyadav/finance-tracker/internal/storage"
)

type reportFixture struct {
	repo    *storage.SQLiteRepository
	user    core.User
	salary  core.Category
	food    core.Category
	builder *Builder
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	ctx := context.Background()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	user, err := repo.CreateUser(ctx, "alice", "alice@example.com", "USD")
	require.NoError(t, err)
	salary, err := repo.GetOrCreateCategory(ctx, user.ID, "Salary", core.KindIncome)
	require.NoError(t, err)
	food, err := repo.GetOrCreateCategory(ctx, user.ID, "Food", core.KindExpense)
	require.NoError(t, err)

	return &reportFixture{
		repo:    repo,
		user:    user,
		salary:  salary,
		food:    food,
		builder: NewBuilder(repo, log.New(log.DefaultConfig())),
	}
}

func (f *reportFixture) record(t *testing.T, cat *core.Category, amount string, date time.Time, currency string) {
	t.Helper()
	var categoryID *int64
	if cat != nil {
		categoryID = &cat.ID
	}
	_, err := f.repo.CreateTransaction(context.Background(), core.Transaction{
		Owner:      f.user.ID,
		CategoryID: categoryID,
		Amount:     decimal.RequireFromString(amount),
		Date:       date,
		Currency:   currency,
	})
	require.NoError(t, err)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDashboardMonthToDate(t *testing.T) {
	f := newReportFixture(t)
	today := day(2026, time.March, 15)

	f.record(t, &f.salary, "1000", day(2026, time.March, 1), "USD")
	f.record(t, &f.food, "300", day(2026, time.March, 5), "USD")
	f.record(t, &f.food, "200", day(2026, time.March, 10), "USD")
	// Outside the current month, must not count.
	f.record(t, &f.food, "999", day(2026, time.February, 20), "USD")

	sum, err := f.builder.Dashboard(context.Background(), f.user.ID, today)
	require.NoError(t, err)
	assert.Equal(t, "1000", sum.Income.String())
	assert.Equal(t, "500", sum.Expenses.String())
	assert.Equal(t, "500", sum.Savings.String())
}

func TestDashboardRecentIsNewestFirstCapped(t *testing.T) {
	f := newReportFixture(t)
	for d := 1; d <= 7; d++ {
		f.record(t, &f.food, "10", day(2026, time.March, d), "USD")
	}

	sum, err := f.builder.Dashboard(context.Background(), f.user.ID, day(2026, time.March, 20))
	require.NoError(t, err)
	require.Len(t, sum.Recent, RecentLimit)
	assert.Equal(t, day(2026, time.March, 7), sum.Recent[0].Date)
	assert.Equal(t, day(2026, time.March, 3), sum.Recent[4].Date)
}

func TestDashboardEmptyLedgerIsZero(t *testing.T) {
	f := newReportFixture(t)

	sum, err := f.builder.Dashboard(context.Background(), f.user.ID, day(2026, time.March, 15))
	require.NoError(t, err)
	assert.True(t, sum.Income.IsZero())
	assert.True(t, sum.Expenses.IsZero())
	assert.True(t, sum.Savings.IsZero())
	assert.Empty(t, sum.Recent)
}

func TestMonthlyGroupsByMonthChronologically(t *testing.T) {
	f := newReportFixture(t)
	today := day(2026, time.April, 10)

	f.record(t, &f.salary, "200", day(2026, time.February, 3), "USD")
	f.record(t, &f.food, "50", day(2026, time.February, 12), "USD")
	f.record(t, &f.food, "75", day(2026, time.March, 2), "USD")
	// Different currency, excluded without conversion.
	f.record(t, &f.food, "40", day(2026, time.March, 4), "EUR")
	// Uncategorized rows carry no kind and contribute nothing.
	f.record(t, nil, "30", day(2026, time.March, 6), "USD")
	// Older than the trailing window.
	f.record(t, &f.food, "60", today.AddDate(0, 0, -ReportWindowDays-1), "USD")

	months, err := f.builder.Monthly(context.Background(), f.user.ID, "USD", today)
	require.NoError(t, err)
	require.Len(t, months, 2)

	feb := months[0]
	assert.Equal(t, "Feb 2026", feb.Label)
	assert.Equal(t, "200", feb.Income.String())
	assert.Equal(t, "50", feb.Expense.String())
	assert.Equal(t, "150", feb.Savings.String())

	mar := months[1]
	assert.Equal(t, "Mar 2026", mar.Label)
	assert.True(t, mar.Income.IsZero())
	assert.Equal(t, "75", mar.Expense.String())
	assert.Equal(t, "-75", mar.Savings.String())
}

func TestMonthlyEmptyWindow(t *testing.T) {
	f := newReportFixture(t)

	months, err := f.builder.Monthly(context.Background(), f.user.ID, "USD", day(2026, time.April, 10))
	require.NoError(t, err)
	assert.Empty(t, months)
}
