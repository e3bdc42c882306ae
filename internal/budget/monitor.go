// Package budget compares month-to-date spending against configured
// ceilings and raises overrun notifications.
package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/5hashankyadav/finance-tracker/internal/core"
	"github.com/5hashankyadav/finance-tracker/internal/log"
	"github.com/5hashankyadav/finance-tracker/internal/notify"
	"github.com/5hashankyadav/finance-tracker/internal/storage"
)

// Ledger is the store surface the monitor reads from.
type Ledger interface {
	FindBudget(ctx context.Context, owner, categoryID int64, month time.Time) (*core.Budget, error)
	SumAmount(ctx context.Context, f storage.TransactionFilter) (decimal.Decimal, error)
}

// Monitor checks a single category's month-to-date spend against its
// budget. It holds no state between checks; the month window is an
// argument so callers derive it from the invocation time.
type Monitor struct {
	store    Ledger
	notifier notify.Notifier
	logger   *log.Logger
}

func NewMonitor(store Ledger, notifier notify.Notifier, logger *log.Logger) *Monitor {
	return &Monitor{
		store:    store,
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentBudget),
	}
}

// Check runs after a transaction commit. It is a no-op for income
// categories and for categories without a budget in the month that
// contains monthStart. When month-to-date spend strictly exceeds the
// budget it notifies the user; spending exactly the budget does not
// alert. Notification failures are logged and swallowed so the write
// path never fails because of them. The check fires on every
// qualifying commit while the category stays over budget.
func (m *Monitor) Check(ctx context.Context, user core.User, category core.Category, monthStart time.Time) error {
	if category.Kind != core.KindExpense {
		return nil
	}

	b, err := m.store.FindBudget(ctx, user.ID, category.ID, monthStart)
	if err != nil {
		return fmt.Errorf("find budget: %w", err)
	}
	if b == nil {
		return nil
	}

	spent, err := m.store.SumAmount(ctx, storage.TransactionFilter{
		Owner:      user.ID,
		CategoryID: &category.ID,
		From:       monthStart,
	})
	if err != nil {
		return fmt.Errorf("sum spending: %w", err)
	}

	if !spent.GreaterThan(b.Amount) {
		return nil
	}

	subject := fmt.Sprintf("Budget Alert: %s", category.Name)
	body := fmt.Sprintf("You have exceeded your budget for %s.\nBudget: %s\nSpent: %s",
		category.Name, b.Amount.String(), spent.String())

	if err := m.notifier.Send(ctx, user.Email, subject, body); err != nil {
		m.logger.ErrorContext(ctx, "Budget alert delivery failed",
			log.FieldError, err,
			log.FieldRecipient, user.Email,
			log.FieldCategory, category.Name)
		return nil
	}

	m.logger.InfoContext(ctx, "Budget overrun notified",
		log.FieldRecipient, user.Email,
		log.FieldCategory, category.Name,
		log.FieldBudget, b.Amount.String(),
		log.FieldSpent, spent.String())
	return nil
}
