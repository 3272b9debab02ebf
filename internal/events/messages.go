package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// BillEventMessage notifies consumers that a bill changed. It carries
// only the action and id; consumers fetch the full record themselves.
type BillEventMessage struct {
	Action    string    `json:"action"`
	BillID    string    `json:"bill_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBillEventMessage creates an event message stamped with the
// current time.
func NewBillEventMessage(action, billID string) *BillEventMessage {
	return &BillEventMessage{
		Action:    action,
		BillID:    billID,
		Timestamp: time.Now(),
	}
}

// Validate rejects messages a consumer cannot act on.
func (m *BillEventMessage) Validate() error {
	if m.Action == "" {
		return fmt.Errorf("event message missing action")
	}
	if m.BillID == "" {
		return fmt.Errorf("event message missing bill id")
	}
	return nil
}

// ToJSON converts the message to JSON bytes.
func (m *BillEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BillEventMessageFromJSON creates a message from JSON bytes.
func BillEventMessageFromJSON(data []byte) (*BillEventMessage, error) {
	var msg BillEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
