package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/5hashankyadav/finance-tracker/internal/anomaly"
	"github.com/5hashankyadav/finance-tracker/internal/core"
	"github.com/5hashankyadav/finance-tracker/internal/report"
)

var reportCurrency string

func init() {
	reportCmd.Flags().StringVar(&reportCurrency, "currency", "", "3-letter currency code (default: account preference)")
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show month-to-date totals and recent transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp()
		defer app.Close()
		ctx := cmd.Context()

		user, err := app.currentUser(ctx)
		if err != nil {
			return err
		}

		builder := report.NewBuilder(app.store, app.logger)
		summary, err := builder.Dashboard(ctx, user.ID, time.Now())
		if err != nil {
			return err
		}

		fmt.Printf("Month to date (%s)\n", core.MonthLabel(time.Now()))
		fmt.Printf("  Income:   %s\n", summary.Income.StringFixed(2))
		fmt.Printf("  Expenses: %s\n", summary.Expenses.StringFixed(2))
		fmt.Printf("  Savings:  %s\n", summary.Savings.StringFixed(2))
		if len(summary.Recent) > 0 {
			fmt.Println("Recent transactions:")
			for _, t := range summary.Recent {
				fmt.Printf("  %s  %10s %s  %s\n",
					t.Date.Format(core.DateFormat), t.Amount.StringFixed(2), t.Currency, t.Description)
			}
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the monthly income/expense report for the last 180 days",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp()
		defer app.Close()
		ctx := cmd.Context()

		user, err := app.currentUser(ctx)
		if err != nil {
			return err
		}

		currency := reportCurrency
		if currency == "" {
			currency = user.Currency
		}

		builder := report.NewBuilder(app.store, app.logger)
		months, err := builder.Monthly(ctx, user.ID, currency, time.Now())
		if err != nil {
			return err
		}
		if len(months) == 0 {
			fmt.Printf("No %s transactions in the last %d days.\n", currency, report.ReportWindowDays)
			return nil
		}

		fmt.Printf("%-10s %12s %12s %12s\n", "Month", "Income", "Expense", "Savings")
		for _, m := range months {
			fmt.Printf("%-10s %12s %12s %12s\n",
				m.Label, m.Income.StringFixed(2), m.Expense.StringFixed(2), m.Savings.StringFixed(2))
		}
		return nil
	},
}

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "List expense transactions far above their category average",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp()
		defer app.Close()
		ctx := cmd.Context()

		user, err := app.currentUser(ctx)
		if err != nil {
			return err
		}

		detector := anomaly.NewDetector(app.store, app.logger)
		flagged, err := detector.Detect(ctx, user.ID)
		if err != nil {
			return err
		}
		if len(flagged) == 0 {
			fmt.Println("No anomalies detected.")
			return nil
		}

		for _, t := range flagged {
			fmt.Printf("%s  %10s %s  %s\n",
				t.Date.Format(core.DateFormat), t.Amount.StringFixed(2), t.Currency, t.Description)
		}
		return nil
	},
}
