package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/5hashankyadav/finance-tracker/internal/core"
)

var (
	addAmount      string
	addDescription string
	addDate        string
	addCategory    string
	addKind        string
	addCurrency    string

	budgetCategory string
	budgetAmount   string
	budgetMonth    string
)

func init() {
	addCmd.Flags().StringVar(&addAmount, "amount", "", "transaction amount (non-negative)")
	addCmd.Flags().StringVar(&addDescription, "description", "", "free-text description")
	addCmd.Flags().StringVar(&addDate, "date", "", "date as YYYY-MM-DD (default: today)")
	addCmd.Flags().StringVar(&addCategory, "category", "Other", "category name")
	addCmd.Flags().StringVar(&addKind, "kind", string(core.KindExpense), "INCOME or EXPENSE")
	addCmd.Flags().StringVar(&addCurrency, "currency", "", "3-letter currency (default: account preference)")
	_ = addCmd.MarkFlagRequired("amount")

	budgetCmd.Flags().StringVar(&budgetCategory, "category", "", "expense category name")
	budgetCmd.Flags().StringVar(&budgetAmount, "amount", "", "monthly spending ceiling")
	budgetCmd.Flags().StringVar(&budgetMonth, "month", "", "month as YYYY-MM (default: current month)")
	_ = budgetCmd.MarkFlagRequired("category")
	_ = budgetCmd.MarkFlagRequired("amount")
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction manually",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp()
		defer app.Close()
		ctx := cmd.Context()

		user, err := app.currentUser(ctx)
		if err != nil {
			return err
		}

		kind := core.Kind(addKind)
		if !kind.Valid() {
			return core.ErrInvalidKind
		}

		amount, err := core.ParseAmount(addAmount)
		if err != nil {
			return err
		}
		if amount.IsNegative() {
			return core.ErrNegativeAmount
		}

		date := time.Now()
		if addDate != "" {
			if date, err = time.Parse(core.DateFormat, addDate); err != nil {
				return fmt.Errorf("bad --date %q: %w", addDate, core.ErrInvalidDate)
			}
		}

		currency := addCurrency
		if currency == "" {
			currency = user.Currency
		}

		category, err := app.store.GetOrCreateCategory(ctx, user.ID, addCategory, kind)
		if err != nil {
			return err
		}

		saved, err := app.svc.RecordTransaction(ctx, core.Transaction{
			Owner:       user.ID,
			CategoryID:  &category.ID,
			Amount:      amount,
			Description: addDescription,
			Date:        date,
			Currency:    currency,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Recorded transaction %d: %s %s in %s\n",
			saved.ID, saved.Amount.StringFixed(2), saved.Currency, category.Name)
		return nil
	},
}

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Set a monthly spending ceiling for an expense category",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp()
		defer app.Close()
		ctx := cmd.Context()

		user, err := app.currentUser(ctx)
		if err != nil {
			return err
		}

		amount, err := core.ParseAmount(budgetAmount)
		if err != nil {
			return err
		}

		month := time.Now()
		if budgetMonth != "" {
			if month, err = time.Parse("2006-01", budgetMonth); err != nil {
				return fmt.Errorf("bad --month %q: want YYYY-MM", budgetMonth)
			}
		}

		category, err := app.store.GetOrCreateCategory(ctx, user.ID, budgetCategory, core.KindExpense)
		if err != nil {
			return err
		}

		b, err := app.svc.SetBudget(ctx, user.ID, category.ID, amount, month)
		if err != nil {
			return err
		}

		fmt.Printf("Budget for %s in %s: %s\n",
			category.Name, core.MonthLabel(b.Month), b.Amount.StringFixed(2))
		return nil
	},
}
