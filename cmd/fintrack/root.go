package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/5hashankyadav/finance-tracker/internal/amqp"
	"github.com/5hashankyadav/finance-tracker/internal/budget"
	"github.com/5hashankyadav/finance-tracker/internal/cli"
	"github.com/5hashankyadav/finance-tracker/internal/config"
	"github.com/5hashankyadav/finance-tracker/internal/core"
	"github.com/5hashankyadav/finance-tracker/internal/log"
	"github.com/5hashankyadav/finance-tracker/internal/notify"
	"github.com/5hashankyadav/finance-tracker/internal/services"
	"github.com/5hashankyadav/finance-tracker/internal/storage"
)

var username string

var rootCmd = &cobra.Command{
	Use:   "fintrack",
	Short: "Personal finance tracker: import statements, track budgets, inspect spending.",
	Long: `fintrack records income and expense transactions against a local
ledger, imports bank-statement CSV files with auto-categorization,
and reports monthly totals, budget overruns and spending anomalies.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&username, "user", "u", "admin", "account username to operate on")
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(anomaliesCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(budgetCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(seedCmd)
}

// app wires the pieces every subcommand needs: config, store, the
// ledger service with its post-commit budget hook, and the alert
// transport. When the alert queue is unreachable the monitor falls
// back to direct SMTP delivery.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	store  *storage.SQLiteRepository
	svc    *services.LedgerService
	queue  *amqp.Client
}

func newApp() *app {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)
	store := cli.InitStore(logger, cfg.SQLiteDBPath)

	var notifier notify.Notifier
	queue, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Alert queue unreachable, sending alerts directly over SMTP",
			log.FieldError, err)
		notifier = notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort,
			cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		notifier = notify.NewQueueNotifier(queue)
	}

	monitor := budget.NewMonitor(store, notifier, logger)
	svc := services.NewLedgerService(store, monitor, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		svc:    svc,
		queue:  queue,
	}
}

func (a *app) Close() {
	if a.queue != nil {
		a.queue.Close()
	}
	a.store.Close()
}

// currentUser resolves the --user flag to an account.
func (a *app) currentUser(ctx context.Context) (core.User, error) {
	u, err := a.store.GetUserByUsername(ctx, username)
	if err != nil {
		return core.User{}, err
	}
	if u == nil {
		return core.User{}, fmt.Errorf("no account %q: run 'fintrack provision --username %s' first", username, username)
	}
	return *u, nil
}
