package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"saldo/internal/core"
)

// EventType names a ledger change.
type EventType string

const (
	EventTransactionsCreated EventType = "transactions.created"
	EventTransactionDeleted  EventType = "transaction.deleted"
	EventGroupDeleted        EventType = "group.deleted"
)

// TransactionPayload is the wire form of a stored transaction.
type TransactionPayload struct {
	ID              string `json:"id"`
	GroupID         string `json:"group_id,omitempty"`
	Date            string `json:"date"`
	Kind            string `json:"kind"`
	Amount          string `json:"amount"`
	Description     string `json:"description,omitempty"`
	CategoryID      string `json:"category_id,omitempty"`
	Category        string `json:"category,omitempty"`
	IsCreditCard    bool   `json:"is_credit_card"`
	CardLabel       string `json:"card_label,omitempty"`
	RecurrenceCount int    `json:"recurrence_count,omitempty"`
}

// LedgerEvent is published after every successful ledger write.
// Only the fields relevant to Type are set.
type LedgerEvent struct {
	Type          EventType            `json:"type"`
	OwnerID       string               `json:"owner_id"`
	Transactions  []TransactionPayload `json:"transactions,omitempty"`
	TransactionID string               `json:"transaction_id,omitempty"`
	GroupID       string               `json:"group_id,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`
}

// NewTransactionsCreated describes a batch of inserted rows. categoryName is
// the display name of the rows' category, empty when they have none.
func NewTransactionsCreated(ownerID string, txs []core.Transaction, categoryName string) *LedgerEvent {
	payload := make([]TransactionPayload, len(txs))
	for i, t := range txs {
		payload[i] = TransactionPayload{
			ID:              t.ID,
			GroupID:         t.RecurrenceGroupID,
			Date:            t.Date.String(),
			Kind:            t.Kind.String(),
			Amount:          core.FormatAmount(t.Amount),
			Description:     t.Description,
			CategoryID:      t.CategoryID,
			IsCreditCard:    t.IsCreditCard,
			CardLabel:       t.CardLabel,
			RecurrenceCount: t.RecurrenceCount,
		}
		if t.CategoryID != "" {
			payload[i].Category = categoryName
		}
	}
	return &LedgerEvent{
		Type:         EventTransactionsCreated,
		OwnerID:      ownerID,
		Transactions: payload,
		Timestamp:    time.Now(),
	}
}

func NewTransactionDeleted(ownerID, id string) *LedgerEvent {
	return &LedgerEvent{
		Type:          EventTransactionDeleted,
		OwnerID:       ownerID,
		TransactionID: id,
		Timestamp:     time.Now(),
	}
}

func NewGroupDeleted(ownerID, groupID string) *LedgerEvent {
	return &LedgerEvent{
		Type:      EventGroupDeleted,
		OwnerID:   ownerID,
		GroupID:   groupID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and checks an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Type {
	case EventTransactionsCreated:
		if len(ev.Transactions) == 0 {
			return nil, fmt.Errorf("%s event without transactions", ev.Type)
		}
	case EventTransactionDeleted:
		if ev.TransactionID == "" {
			return nil, fmt.Errorf("%s event without transaction_id", ev.Type)
		}
	case EventGroupDeleted:
		if ev.GroupID == "" {
			return nil, fmt.Errorf("%s event without group_id", ev.Type)
		}
	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
	return &ev, nil
}
