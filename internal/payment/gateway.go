package payment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/nexiq/storefront-api/internal/domain"
)

// maxAmountCents mirrors the processor's per-charge ceiling of 999,999.99.
const maxAmountCents = 99_999_999

var ErrInvalidAmount = errors.New("amount must be a positive number of at most 999999.99")

// IntentRequest describes a payment intent to open with the processor.
type IntentRequest struct {
	AmountCents int64
	Currency    string
	Email       string
}

// Gateway opens payment intents with a third-party processor.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*domain.PaymentIntent, error)
}

// ToCents converts a decimal price into the smallest currency unit.
func ToCents(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidAmount
	}
	cents := int64(math.Round(price * 100))
	if cents <= 0 || cents > maxAmountCents {
		return 0, fmt.Errorf("%w: got %.2f", ErrInvalidAmount, price)
	}
	return cents, nil
}
