package dto

// PayOrderRequest is the body of PATCH /order/:id.
type PayOrderRequest struct {
	TransactionID string  `json:"transactionId"`
	Amount        float64 `json:"amount"`
}

// PaymentIntentRequest is the body of POST /create-payment-intent.
type PaymentIntentRequest struct {
	Price *float64 `json:"price"`
}

// PaymentIntentResponse carries the secret the client confirms the card against.
type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}
