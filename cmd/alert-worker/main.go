package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/5hashankyadav/finance-tracker/internal/amqp"
	"github.com/5hashankyadav/finance-tracker/internal/cli"
	"github.com/5hashankyadav/finance-tracker/internal/log"
	"github.com/5hashankyadav/finance-tracker/internal/notify"
	"github.com/5hashankyadav/finance-tracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting alert-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to alert queue", log.FieldError, err)
		return
	}
	defer amqpClient.Close()

	mailer := notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	alertWorker := worker.NewAlertWorker(mailer, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		logger.Info("Closing alert queue connection")
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeBudgetAlerts(gctx, func(msg *amqp.BudgetAlertMessage) error {
			return alertWorker.HandleAlert(gctx, msg)
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Alert consumption stopped", log.FieldError, err)
	}

	<-done
	logger.Info("alert-worker stopped")
}
