package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/nexiq/storefront-api/internal/api/dto"
	"github.com/nexiq/storefront-api/internal/auth"
	"github.com/nexiq/storefront-api/internal/domain"
)

// OrderService is what the order and payment-history routes need.
type OrderService interface {
	PlaceOrder(ctx context.Context, email string, details domain.Document) (*domain.Order, error)
	OrdersFor(ctx context.Context, email string) ([]*domain.Order, error)
	AllOrders(ctx context.Context) ([]*domain.Order, error)
	GetOrder(ctx context.Context, subject, id string) (*domain.Order, error)
	PayOrder(ctx context.Context, subject, id, transactionID string, amount float64) (*domain.UpdateResult, error)
	DeleteOrder(ctx context.Context, id string) (*domain.DeleteResult, error)
	PaymentsFor(ctx context.Context, email string) ([]*domain.Payment, error)
}

// OrdersHandler manages order endpoints.
type OrdersHandler struct {
	orders OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// Mine GET /order.
func (h *OrdersHandler) Mine(c *fiber.Ctx) error {
	orders, err := h.orders.OrdersFor(c.UserContext(), auth.SubjectEmail(c))
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// All GET /orders.
func (h *OrdersHandler) All(c *fiber.Ctx) error {
	orders, err := h.orders.AllOrders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// Place POST /order.
func (h *OrdersHandler) Place(c *fiber.Ctx) error {
	doc, err := parseDocument(c)
	if err != nil {
		return err
	}
	order, err := h.orders.PlaceOrder(c.UserContext(), auth.SubjectEmail(c), doc)
	if err != nil {
		return err
	}
	return c.JSON(domain.InsertResult{Acknowledged: true, InsertedID: order.ID})
}

// Get GET /order/:id.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	order, err := h.orders.GetOrder(c.UserContext(), auth.SubjectEmail(c), pathParam(c, "id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// Pay PATCH /order/:id.
func (h *OrdersHandler) Pay(c *fiber.Ctx) error {
	var req dto.PayOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.orders.PayOrder(c.UserContext(), auth.SubjectEmail(c), pathParam(c, "id"), req.TransactionID, req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Delete DELETE /order/:id.
func (h *OrdersHandler) Delete(c *fiber.Ctx) error {
	result, err := h.orders.DeleteOrder(c.UserContext(), pathParam(c, "id"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Payments GET /payment.
func (h *OrdersHandler) Payments(c *fiber.Ctx) error {
	payments, err := h.orders.PaymentsFor(c.UserContext(), auth.SubjectEmail(c))
	if err != nil {
		return err
	}
	return c.JSON(payments)
}
