package notify

import (
	"context"

	"github.com/5hashankyadav/finance-tracker/internal/amqp"
)

// AlertPublisher is the queue surface the notifier needs.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}

// QueueNotifier hands messages to the alert queue instead of sending
// them inline; the alert worker performs the actual SMTP delivery.
type QueueNotifier struct {
	publisher AlertPublisher
}

func NewQueueNotifier(publisher AlertPublisher) *QueueNotifier {
	return &QueueNotifier{publisher: publisher}
}

// Send implements Notifier.
func (n *QueueNotifier) Send(ctx context.Context, to, subject, body string) error {
	return n.publisher.PublishBudgetAlert(ctx, amqp.NewBudgetAlertMessage(to, subject, body))
}
