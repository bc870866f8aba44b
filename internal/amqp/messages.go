package amqp

import (
	"encoding/json"
	"time"
)

// Event names carried on the ledger event stream.
const (
	EventExpenseCreated = "expense.created"
	EventExpenseDeleted = "expense.deleted"
)

// LedgerEventMessage announces one ledger mutation. It carries only the
// record id; consumers fetch whatever detail they need themselves.
type LedgerEventMessage struct {
	Event     string    `json:"event"`
	ExpenseID string    `json:"expense_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(event, expenseID string) *LedgerEventMessage {
	return &LedgerEventMessage{
		Event:     event,
		ExpenseID: expenseID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
