// Package worker delivers queued budget alerts to users.
package worker

import (
	"context"
	"fmt"

	"github.com/5hashankyadav/finance-tracker/internal/amqp"
	"github.com/5hashankyadav/finance-tracker/internal/log"
	"github.com/5hashankyadav/finance-tracker/internal/notify"
)

// AlertWorker drains the budget-alert queue and sends each message
// through the configured notifier. Failed deliveries return an error
// so the queue client requeues the message.
type AlertWorker struct {
	notifier notify.Notifier
	logger   *log.Logger
}

func NewAlertWorker(notifier notify.Notifier, logger *log.Logger) *AlertWorker {
	return &AlertWorker{
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleAlert processes a single queued alert.
func (w *AlertWorker) HandleAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	if err := w.notifier.Send(ctx, msg.To, msg.Subject, msg.Body); err != nil {
		return fmt.Errorf("deliver alert to %s: %w", msg.To, err)
	}

	w.logger.InfoContext(ctx, "Alert delivered",
		log.FieldRecipient, msg.To,
		"subject", msg.Subject,
		"queued_at", msg.Timestamp)
	return nil
}
