package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/5hashankyadav/finance-tracker/internal/cache"
	"github.com/5hashankyadav/finance-tracker/internal/core"
	"github.com/5hashankyadav/finance-tracker/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <statement.csv>",
	Short: "Import a bank-statement CSV file",
	Long: `Import parses a UTF-8 CSV bank statement with Date and Amount
columns (Description and Category optional). Negative amounts become
expenses, other amounts income; categories are created on first use.
Rows with bad dates or amounts are skipped, the rest are committed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp()
		defer app.Close()
		ctx := cmd.Context()

		user, err := app.currentUser(ctx)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open statement: %w", err)
		}
		defer f.Close()

		resolved := cache.NewLRUCache[core.Category](app.cfg.CategoryCacheSize, app.cfg.CategoryCacheTTL)
		imp := importer.New(app.store, app.svc, resolved, app.logger)

		res, err := imp.Import(ctx, user, f)
		if err != nil {
			return err
		}

		fmt.Printf("Successfully imported %d transactions", res.Imported)
		if res.Skipped > 0 {
			fmt.Printf(" (%d rows skipped)", res.Skipped)
		}
		fmt.Println()
		return nil
	},
}
