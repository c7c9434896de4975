package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderPlaced  EventType = "order_placed"
	EventOrderPaid    EventType = "order_paid"
	EventUserPromoted EventType = "user_promoted"
	EventUserDeleted  EventType = "user_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Subject   string    `json:"subject"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// OrderPlacedPayload payload.
type OrderPlacedPayload struct {
	OrderID string `json:"order_id"`
	Email   string `json:"email"`
}

// OrderPaidPayload payload.
type OrderPaidPayload struct {
	OrderID       string  `json:"order_id"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
}

// UserPromotedPayload payload.
type UserPromotedPayload struct {
	Email string `json:"email"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	UserID string `json:"user_id"`
}
