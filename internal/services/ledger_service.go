// Package services orchestrates ledger writes and their post-commit
// side effects.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/5hashankyadav/finance-tracker/internal/core"
	"github.com/5hashankyadav/finance-tracker/internal/log"
)

// Default starter categories provisioned for every new account.
var (
	DefaultIncomeCategories  = []string{"Salary", "Freelance", "Investments", "Other Income"}
	DefaultExpenseCategories = []string{"Food", "Rent", "Utilities", "Transportation", "Entertainment", "Shopping", "Health", "Other Expenses"}
)

// Store is the persistence surface the service writes through.
type Store interface {
	CreateUser(ctx context.Context, username, email, currency string) (core.User, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
	GetUserByUsername(ctx context.Context, username string) (*core.User, error)
	GetOrCreateCategory(ctx context.Context, owner int64, name string, kind core.Kind) (core.Category, error)
	GetCategory(ctx context.Context, owner, id int64) (*core.Category, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
}

// OverrunChecker is the budget monitor surface invoked after commits.
type OverrunChecker interface {
	Check(ctx context.Context, user core.User, category core.Category, monthStart time.Time) error
}

// LedgerService records transactions and runs the budget check as an
// explicit post-commit hook. A failed check never fails the write.
type LedgerService struct {
	store   Store
	monitor OverrunChecker
	logger  *log.Logger
	now     func() time.Time
}

// NewLedgerService builds the service. monitor may be nil when no
// overrun checking is wanted (seeding, tests).
func NewLedgerService(store Store, monitor OverrunChecker, logger *log.Logger) *LedgerService {
	return &LedgerService{
		store:   store,
		monitor: monitor,
		logger:  logger.WithComponent(log.ComponentLedger),
		now:     time.Now,
	}
}

// RecordTransaction commits a transaction and then runs the budget
// check for its category, with the month window derived from the
// invocation time. Hook failures are logged and swallowed.
func (s *LedgerService) RecordTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	saved, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.checkBudget(ctx, saved)
	return saved, nil
}

func (s *LedgerService) checkBudget(ctx context.Context, t core.Transaction) {
	if s.monitor == nil || t.CategoryID == nil {
		return
	}

	user, err := s.store.GetUser(ctx, t.Owner)
	if err != nil {
		s.logger.ErrorContext(ctx, "Budget check: user lookup failed",
			log.FieldError, err, log.FieldOwner, t.Owner)
		return
	}
	category, err := s.store.GetCategory(ctx, t.Owner, *t.CategoryID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Budget check: category lookup failed",
			log.FieldError, err, log.FieldOwner, t.Owner)
		return
	}
	if category == nil {
		return
	}

	if err := s.monitor.Check(ctx, user, *category, core.MonthStart(s.now())); err != nil {
		s.logger.ErrorContext(ctx, "Budget check failed",
			log.FieldError, err,
			log.FieldOwner, t.Owner,
			log.FieldCategory, category.Name)
	}
}

// ProvisionUser creates an account (or finds an existing one by
// username) and get-or-creates its starter category set. The call is
// idempotent; re-provisioning never duplicates categories.
func (s *LedgerService) ProvisionUser(ctx context.Context, username, email, currency string, income, expense []string) (core.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return core.User{}, fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		created, err := s.store.CreateUser(ctx, username, email, currency)
		if err != nil {
			return core.User{}, fmt.Errorf("create user: %w", err)
		}
		user = &created
		s.logger.InfoContext(ctx, "Account created",
			log.FieldUser, username, log.FieldCurrency, currency)
	}

	for _, name := range income {
		if _, err := s.store.GetOrCreateCategory(ctx, user.ID, name, core.KindIncome); err != nil {
			return core.User{}, fmt.Errorf("provision income category %q: %w", name, err)
		}
	}
	for _, name := range expense {
		if _, err := s.store.GetOrCreateCategory(ctx, user.ID, name, core.KindExpense); err != nil {
			return core.User{}, fmt.Errorf("provision expense category %q: %w", name, err)
		}
	}

	return *user, nil
}

// SetBudget creates a spending ceiling for an owned category; the
// month collapses to the first of its month.
func (s *LedgerService) SetBudget(ctx context.Context, owner, categoryID int64, amount decimal.Decimal, month time.Time) (core.Budget, error) {
	category, err := s.store.GetCategory(ctx, owner, categoryID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("look up category: %w", err)
	}
	if category == nil {
		return core.Budget{}, fmt.Errorf("category %d not found for owner %d", categoryID, owner)
	}

	b, err := s.store.CreateBudget(ctx, core.Budget{
		Owner:      owner,
		CategoryID: categoryID,
		Amount:     amount,
		Month:      core.MonthStart(month),
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return b, nil
}
