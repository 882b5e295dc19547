package amqp

import (
	"encoding/json"
	"time"
)

// Ledger operations carried by LedgerChangedMessage.
const (
	OpSaved    = "saved"
	OpDeleted  = "deleted"
	OpRestored = "restored"
)

// Entities carried by LedgerChangedMessage.
const (
	EntityContract    = "contract"
	EntityIncome      = "income"
	EntityExpense     = "expense"
	EntityLabour      = "labour"
	EntityLoan        = "loan"
	EntityLoanPayment = "loan_payment"
	EntitySettings    = "settings"
	EntityLedger      = "ledger"
)

// LedgerChangedMessage says which record changed. Consumers re-read the
// ledger rather than trusting a payload.
type LedgerChangedMessage struct {
	Entity    string    `json:"entity"`
	ID        string    `json:"id,omitempty"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(entity, id, op string, at time.Time) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Entity:    entity,
		ID:        id,
		Op:        op,
		Timestamp: at,
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReminderMessage is the daily "did you enter today's expenses?" notification,
// already rendered in the user's language.
type ReminderMessage struct {
	Language  string    `json:"language"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReminderMessageFromJSON(data []byte) (*ReminderMessage, error) {
	var msg ReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
