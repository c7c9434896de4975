package domain

import (
	"encoding/json"
	"time"
)

// Order is a purchase placed by a user. Details holds the client-supplied fields.
type Order struct {
	ID            string
	Email         string
	Paid          bool
	TransactionID *string
	Details       Document
	CreatedAt     time.Time
}

// MarshalJSON flattens the order into a single document.
func (o Order) MarshalJSON() ([]byte, error) {
	doc := o.Details.Clone()
	doc[DocumentIDKey] = o.ID
	doc["email"] = o.Email
	doc["paid"] = o.Paid
	if o.TransactionID != nil {
		doc["transactionId"] = *o.TransactionID
	}
	doc["createdAt"] = o.CreatedAt
	return json.Marshal(doc)
}

// Payment records a settled charge against an order.
type Payment struct {
	ID            string    `json:"_id"`
	OrderID       string    `json:"orderId"`
	Email         string    `json:"email"`
	TransactionID string    `json:"transactionId"`
	Amount        float64   `json:"amount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PaymentIntent is the processor-side handle the client confirms against.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	AmountCents  int64  `json:"amount"`
	Currency     string `json:"currency"`
}
