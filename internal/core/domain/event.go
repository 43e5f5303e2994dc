package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LedgerEventType names a transaction lifecycle event.
type LedgerEventType string

const (
	EventTransactionCreated   LedgerEventType = "transaction.created"
	EventTransactionPosted    LedgerEventType = "transaction.posted"
	EventTransactionCancelled LedgerEventType = "transaction.cancelled"
)

// EventStatus is the delivery state of an outbox event.
type EventStatus string

const (
	EventPending EventStatus = "PENDING"
	EventSent    EventStatus = "SENT"
	EventFailed  EventStatus = "FAILED"
)

// LedgerEvent is an outbox record written in the same database transaction as the change it describes.
type LedgerEvent struct {
	EventID     string
	AggregateID string
	EventType   LedgerEventType
	Payload     []byte
	Status      EventStatus
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// TransactionEventPayload is the published body of a transaction event.
type TransactionEventPayload struct {
	EventID    string          `json:"eventId"`
	EventType  LedgerEventType `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       Transaction     `json:"data"`
}

// NewTransactionEvent builds a pending outbox event for txn.
func NewTransactionEvent(txn Transaction, eventType LedgerEventType, now time.Time) (LedgerEvent, error) {
	eventID := uuid.NewString()
	payload, err := json.Marshal(TransactionEventPayload{
		EventID:    eventID,
		EventType:  eventType,
		OccurredAt: now,
		Data:       txn,
	})
	if err != nil {
		return LedgerEvent{}, fmt.Errorf("failed to encode %s event for transaction %s: %w", eventType, txn.TransactionID, err)
	}
	return LedgerEvent{
		EventID:     eventID,
		AggregateID: txn.TransactionID,
		EventType:   eventType,
		Payload:     payload,
		Status:      EventPending,
		CreatedAt:   now,
	}, nil
}
