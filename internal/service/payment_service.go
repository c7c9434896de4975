package service

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/nexiq/storefront-api/internal/domain"
	"github.com/nexiq/storefront-api/internal/payment"
	apperrors "github.com/nexiq/storefront-api/pkg/util"
)

// PaymentService opens payment intents with the configured processor.
type PaymentService struct {
	gateway  payment.Gateway
	currency string
	logger   *zap.Logger
}

// NewPaymentService builds the service. A nil gateway disables payments.
func NewPaymentService(gateway payment.Gateway, currency string, logger *zap.Logger) *PaymentService {
	if currency == "" {
		currency = "usd"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{gateway: gateway, currency: currency, logger: logger}
}

// CreateIntent opens an intent for price, expressed in major currency units.
func (s *PaymentService) CreateIntent(ctx context.Context, email string, price float64) (*domain.PaymentIntent, error) {
	if s.gateway == nil {
		return nil, apperrors.NewUnavailable("payments are not configured")
	}

	cents, err := payment.ToCents(price)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"price": price})
	}

	intent, err := s.gateway.CreateIntent(ctx, payment.IntentRequest{
		AmountCents: cents,
		Currency:    s.currency,
		Email:       email,
	})
	if err != nil {
		if errors.Is(err, payment.ErrInvalidAmount) {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
		s.logger.Error("payment intent failed", zap.String("email", email), zap.Int64("amount", cents), zap.Error(err))
		return nil, apperrors.NewDomainError("PAYMENT_PROCESSOR_FAILURE", "payment processor unavailable", http.StatusBadGateway, nil)
	}
	return intent, nil
}
