package amqp

import (
	"encoding/json"
	"time"
)

// BudgetAlertMessage carries one budget-overrun notification from the
// monitor to the delivery worker. The message is self-contained: the
// worker does not need ledger access to send it.
type BudgetAlertMessage struct {
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBudgetAlertMessage creates an alert message stamped with the
// current time.
func NewBudgetAlertMessage(to, subject, body string) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		To:        to,
		Subject:   subject,
		Body:      body,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON creates a message from JSON bytes
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
