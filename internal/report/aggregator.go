// Package report builds the dashboard and monthly aggregates the
// presentation layer renders.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/5hashankyadav/finance-tracker/internal/core"
	"github.com/5hashankyadav/finance-tracker/internal/log"
	"github.com/5hashankyadav/finance-tracker/internal/storage"
)

// ReportWindowDays is the trailing window of the monthly report.
const ReportWindowDays = 180

// RecentLimit is how many transactions the dashboard shows.
const RecentLimit = 5

// Ledger is the store surface the aggregator reads from.
type Ledger interface {
	ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error)
	SumAmount(ctx context.Context, f storage.TransactionFilter) (decimal.Decimal, error)
	ListCategories(ctx context.Context, owner int64, kind core.Kind) ([]core.Category, error)
}

// DashboardSummary holds the month-to-date totals plus the most
// recent transactions. Absent sums are zero, never an error.
type DashboardSummary struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Savings  decimal.Decimal
	Recent   []core.Transaction
}

// MonthTotals is one month's row in the monthly report.
type MonthTotals struct {
	Month   time.Time
	Label   string
	Income  decimal.Decimal
	Expense decimal.Decimal
	Savings decimal.Decimal
}

type Builder struct {
	store  Ledger
	logger *log.Logger
}

func NewBuilder(store Ledger, logger *log.Logger) *Builder {
	return &Builder{
		store:  store,
		logger: logger.WithComponent(log.ComponentReport),
	}
}

// Dashboard sums income and expenses over [month start, today] and
// derives savings as the difference. today also decides which month
// the window covers; callers pass the invocation time.
func (b *Builder) Dashboard(ctx context.Context, owner int64, today time.Time) (DashboardSummary, error) {
	monthStart := core.MonthStart(today)

	income, err := b.store.SumAmount(ctx, storage.TransactionFilter{
		Owner: owner,
		Kind:  core.KindIncome,
		From:  monthStart,
		To:    today,
	})
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("sum income: %w", err)
	}

	expenses, err := b.store.SumAmount(ctx, storage.TransactionFilter{
		Owner: owner,
		Kind:  core.KindExpense,
		From:  monthStart,
		To:    today,
	})
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("sum expenses: %w", err)
	}

	recent, err := b.store.ListTransactions(ctx, storage.TransactionFilter{
		Owner:      owner,
		Limit:      RecentLimit,
		Descending: true,
	})
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("list recent transactions: %w", err)
	}

	return DashboardSummary{
		Income:   income,
		Expenses: expenses,
		Savings:  income.Sub(expenses),
		Recent:   recent,
	}, nil
}

// Monthly groups the trailing window's transactions by calendar month
// and kind, restricted to one currency by exact match; entries in
// other currencies are excluded entirely, no conversion. Months come
// back in chronological order. Uncategorized transactions carry no
// kind and do not contribute to any total.
func (b *Builder) Monthly(ctx context.Context, owner int64, currency string, today time.Time) ([]MonthTotals, error) {
	from := today.AddDate(0, 0, -ReportWindowDays)

	txs, err := b.store.ListTransactions(ctx, storage.TransactionFilter{
		Owner:    owner,
		Currency: currency,
		From:     from,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	kinds, err := b.categoryKinds(ctx, owner)
	if err != nil {
		return nil, err
	}

	var months []*MonthTotals
	index := make(map[time.Time]*MonthTotals)
	for _, t := range txs {
		if t.CategoryID == nil {
			continue
		}
		kind, ok := kinds[*t.CategoryID]
		if !ok {
			continue
		}
		m := core.MonthStart(t.Date)
		totals, ok := index[m]
		if !ok {
			totals = &MonthTotals{
				Month:   m,
				Label:   core.MonthLabel(m),
				Income:  decimal.Zero,
				Expense: decimal.Zero,
			}
			index[m] = totals
			months = append(months, totals)
		}
		switch kind {
		case core.KindIncome:
			totals.Income = totals.Income.Add(t.Amount)
		case core.KindExpense:
			totals.Expense = totals.Expense.Add(t.Amount)
		}
	}

	out := make([]MonthTotals, 0, len(months))
	for _, m := range months {
		m.Savings = m.Income.Sub(m.Expense)
		out = append(out, *m)
	}

	b.logger.InfoContext(ctx, "Monthly report built",
		log.FieldOwner, owner,
		log.FieldCurrency, currency,
		"months", len(out))
	return out, nil
}

func (b *Builder) categoryKinds(ctx context.Context, owner int64) (map[int64]core.Kind, error) {
	cats, err := b.store.ListCategories(ctx, owner, "")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	kinds := make(map[int64]core.Kind, len(cats))
	for _, c := range cats {
		kinds[c.ID] = c.Kind
	}
	return kinds, nil
}
