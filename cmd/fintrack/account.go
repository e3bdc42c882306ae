package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/5hashankyadav/finance-tracker/internal/seed"
	"github.com/5hashankyadav/finance-tracker/internal/services"
)

var (
	provisionUsername string
	provisionEmail    string
	provisionCurrency string
)

func init() {
	provisionCmd.Flags().StringVar(&provisionUsername, "username", "", "account username")
	provisionCmd.Flags().StringVar(&provisionEmail, "email", "", "notification email address")
	provisionCmd.Flags().StringVar(&provisionCurrency, "currency", "", "preferred 3-letter currency (default: DEFAULT_CURRENCY)")
	_ = provisionCmd.MarkFlagRequired("username")
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create an account with the default category set",
	Long: `Provision creates an account and its starter categories. Running it
again for an existing username only tops up missing categories; it
never duplicates them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp()
		defer app.Close()
		ctx := cmd.Context()

		currency := provisionCurrency
		if currency == "" {
			currency = app.cfg.DefaultCurrency
		}

		user, err := app.svc.ProvisionUser(ctx, provisionUsername, provisionEmail, currency,
			services.DefaultIncomeCategories, services.DefaultExpenseCategories)
		if err != nil {
			return err
		}

		fmt.Printf("Account %q ready (id %d, currency %s)\n", user.Username, user.ID, user.Currency)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the ledger with demo data for the admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp()
		defer app.Close()

		// Seeding bypasses the budget hook so two months of generated
		// expenses do not flood the alert queue.
		quiet := services.NewLedgerService(app.store, nil, app.logger)
		seeder := seed.New(quiet, app.store, app.logger)

		if err := seeder.Run(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Demo data seeded for user \"admin\".")
		return nil
	},
}
