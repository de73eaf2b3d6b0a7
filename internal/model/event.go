package model

import "time"

// EventKind names a change made to the ledger.
type EventKind string

// Ledger event kinds.
const (
	EventCategoryCreated    EventKind = "category.created"
	EventCategoryUpdated    EventKind = "category.updated"
	EventCategoryDeleted    EventKind = "category.deleted"
	EventTransactionCreated EventKind = "transaction.created"
	EventTransactionUpdated EventKind = "transaction.updated"
	EventTransactionDeleted EventKind = "transaction.deleted"
)

// Event records a successful write to one of the stores.
type Event struct {
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
	Kind       EventKind `json:"kind"`
	ID         string    `json:"id"`
}
