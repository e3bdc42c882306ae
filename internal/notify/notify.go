// Package notify delivers budget-overrun messages to users.
package notify

import "context"

// Notifier sends one message to one address. Implementations must be
// safe to call from the transaction write path; callers log and drop
// delivery errors rather than propagating them.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}
