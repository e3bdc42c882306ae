// Package seed fills a fresh ledger with demo data: an admin account,
// the starter categories, two months of randomized activity and a few
// current-month budgets.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/5hashankyadav/finance-tracker/internal/core"
	"github.com/5hashankyadav/finance-tracker/internal/log"
	"github.com/5hashankyadav/finance-tracker/internal/services"
)

// Store is the read surface the seeder needs beyond the service.
type Store interface {
	ListCategories(ctx context.Context, owner int64, kind core.Kind) ([]core.Category, error)
	FindBudget(ctx context.Context, owner, categoryID int64, month time.Time) (*core.Budget, error)
}

var expenseDescriptions = map[string][]string{
	"Food":           {"Grocery Shopping", "Dinner at Italian Place", "Starbucks Coffee", "Lunch with team"},
	"Rent":           {"Monthly Rent Payment"},
	"Utilities":      {"Electricity Bill", "Water Bill", "Internet Subscription"},
	"Transportation": {"Uber ride", "Gas refill", "Metro card recharge"},
	"Entertainment":  {"Netflix Subscription", "Movie Tickets", "Gaming Console Skins"},
	"Shopping":       {"Amazon Electronics", "New T-shirt", "Sneakers"},
	"Health":         {"Pharmacy - Vitamins", "Gym Membership"},
}

var budgetChoices = []int64{500, 1000, 1500}

type Seeder struct {
	svc    *services.LedgerService
	store  Store
	logger *log.Logger
	rng    *rand.Rand
	now    func() time.Time
}

// New builds a seeder. The service should be wired without a budget
// monitor so seeding does not fire alert notifications.
func New(svc *services.LedgerService, store Store, logger *log.Logger) *Seeder {
	return &Seeder{
		svc:    svc,
		store:  store,
		logger: logger.WithComponent(log.ComponentSeed),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
}

// Run provisions the admin account and generates the demo ledger:
// two salary incomes, one to three random expenses per day over the
// last 60 days, and budgets for the first four expense categories of
// the current month. Provisioning and budgets are idempotent; the
// transaction generation is not, so re-running grows the ledger.
func (s *Seeder) Run(ctx context.Context) error {
	user, err := s.svc.ProvisionUser(ctx, "admin", "admin@example.com", "USD",
		services.DefaultIncomeCategories, services.DefaultExpenseCategories)
	if err != nil {
		return fmt.Errorf("provision admin: %w", err)
	}

	incomeCats, err := s.store.ListCategories(ctx, user.ID, core.KindIncome)
	if err != nil {
		return fmt.Errorf("list income categories: %w", err)
	}
	expenseCats, err := s.store.ListCategories(ctx, user.ID, core.KindExpense)
	if err != nil {
		return fmt.Errorf("list expense categories: %w", err)
	}
	if len(incomeCats) == 0 || len(expenseCats) == 0 {
		return fmt.Errorf("no categories provisioned for %q", user.Username)
	}

	today := s.now()
	txCount := 0

	for i := 0; i < 2; i++ {
		cat := incomeCats[s.rng.Intn(len(incomeCats))]
		_, err := s.svc.RecordTransaction(ctx, core.Transaction{
			Owner:       user.ID,
			CategoryID:  &cat.ID,
			Amount:      decimal.NewFromInt(5000),
			Description: fmt.Sprintf("Monthly Salary %d", i+1),
			Date:        today.AddDate(0, 0, -(i*30 + 5)),
			Currency:    user.Currency,
		})
		if err != nil {
			return fmt.Errorf("seed salary %d: %w", i+1, err)
		}
		txCount++
	}

	for d := 0; d < 60; d++ {
		date := today.AddDate(0, 0, -d)
		for n := s.rng.Intn(3) + 1; n > 0; n-- {
			cat := expenseCats[s.rng.Intn(len(expenseCats))]
			_, err := s.svc.RecordTransaction(ctx, core.Transaction{
				Owner:       user.ID,
				CategoryID:  &cat.ID,
				Amount:      s.randomAmount(),
				Description: s.randomDescription(cat.Name),
				Date:        date,
				Currency:    user.Currency,
			})
			if err != nil {
				return fmt.Errorf("seed expense on %s: %w", date.Format(core.DateFormat), err)
			}
			txCount++
		}
	}

	month := core.MonthStart(today)
	budgets := 0
	for _, cat := range expenseCats[:min(4, len(expenseCats))] {
		existing, err := s.store.FindBudget(ctx, user.ID, cat.ID, month)
		if err != nil {
			return fmt.Errorf("check budget for %q: %w", cat.Name, err)
		}
		if existing != nil {
			continue
		}
		amount := decimal.NewFromInt(budgetChoices[s.rng.Intn(len(budgetChoices))])
		if _, err := s.svc.SetBudget(ctx, user.ID, cat.ID, amount, month); err != nil {
			return fmt.Errorf("seed budget for %q: %w", cat.Name, err)
		}
		budgets++
	}

	s.logger.InfoContext(ctx, "Seed complete",
		log.FieldUser, user.Username,
		"transactions", txCount,
		"budgets", budgets,
		log.FieldMonth, month.Format(core.DateFormat))
	return nil
}

// randomAmount draws a value in [10.00, 150.00] with cent precision.
func (s *Seeder) randomAmount() decimal.Decimal {
	cents := 1000 + s.rng.Int63n(14001)
	return decimal.New(cents, -2)
}

func (s *Seeder) randomDescription(category string) string {
	pool, ok := expenseDescriptions[category]
	if !ok || len(pool) == 0 {
		return fmt.Sprintf("Spent at %s", category)
	}
	return pool[s.rng.Intn(len(pool))]
}
