package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/nexiq/storefront-api/internal/api/dto"
	"github.com/nexiq/storefront-api/internal/auth"
	"github.com/nexiq/storefront-api/internal/domain"
	"github.com/nexiq/storefront-api/internal/observability"
	apperrors "github.com/nexiq/storefront-api/pkg/util"
)

// PaymentService opens payment intents.
type PaymentService interface {
	CreateIntent(ctx context.Context, email string, price float64) (*domain.PaymentIntent, error)
}

// PaymentsHandler serves POST /create-payment-intent.
type PaymentsHandler struct {
	payments PaymentService
	metrics  *observability.Metrics
}

// NewPaymentsHandler constructs handler. metrics may be nil.
func NewPaymentsHandler(payments PaymentService, metrics *observability.Metrics) *PaymentsHandler {
	return &PaymentsHandler{payments: payments, metrics: metrics}
}

// CreateIntent POST /create-payment-intent.
func (h *PaymentsHandler) CreateIntent(c *fiber.Ctx) error {
	var req dto.PaymentIntentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Price == nil {
		return apperrors.NewValidationError("price is required", nil)
	}

	intent, err := h.payments.CreateIntent(c.UserContext(), auth.SubjectEmail(c), *req.Price)
	if err != nil {
		h.metrics.RecordPaymentIntent("failed")
		return err
	}
	h.metrics.RecordPaymentIntent("created")
	return c.JSON(dto.PaymentIntentResponse{ClientSecret: intent.ClientSecret})
}
