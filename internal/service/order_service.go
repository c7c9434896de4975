package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/nexiq/storefront-api/internal/auth"
	"github.com/nexiq/storefront-api/internal/domain"
	"github.com/nexiq/storefront-api/internal/events"
	"github.com/nexiq/storefront-api/internal/repository"
	apperrors "github.com/nexiq/storefront-api/pkg/util"
)

// orderReservedKeys are owned by the server and dropped from client details.
var orderReservedKeys = []string{"_id", "email", "paid", "transactionId", "createdAt"}

// OrderService places orders and records their payment.
type OrderService struct {
	publisher
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	users    auth.UserFinder
}

// OrderDependencies encapsulates requirements for the order service.
type OrderDependencies struct {
	OrderRepo   repository.OrderRepository
	PaymentRepo repository.PaymentRepository
	Users       auth.UserFinder
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewOrderService builds the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	return &OrderService{
		publisher: newPublisher(deps.Dispatcher, deps.Logger),
		orders:    deps.OrderRepo,
		payments:  deps.PaymentRepo,
		users:     deps.Users,
	}
}

// PlaceOrder stores an order owned by email.
func (s *OrderService) PlaceOrder(ctx context.Context, email string, details domain.Document) (*domain.Order, error) {
	if len(details) == 0 {
		return nil, apperrors.NewValidationError("order document is empty", nil)
	}
	order := &domain.Order{Email: email, Details: details.Without(orderReservedKeys...)}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperrors.StoreError("order", err)
	}
	s.publish(ctx, events.Event{
		Type:    events.EventOrderPlaced,
		Subject: order.ID,
		Actor:   email,
		Payload: events.OrderPlacedPayload{OrderID: order.ID, Email: email},
	})
	return order, nil
}

// OrdersFor lists the orders owned by email.
func (s *OrderService) OrdersFor(ctx context.Context, email string) ([]*domain.Order, error) {
	orders, err := s.orders.ListByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.StoreError("order", err)
	}
	return orders, nil
}

// AllOrders lists every order.
func (s *OrderService) AllOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, apperrors.StoreError("order", err)
	}
	return orders, nil
}

// GetOrder returns an order to its owner or to an admin.
func (s *OrderService) GetOrder(ctx context.Context, subject, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.StoreError("order", err)
	}
	if order.Email == subject {
		return order, nil
	}

	user, err := s.users.FindByEmail(ctx, subject)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewUpstreamError(err)
	}
	if !user.IsAdmin() {
		return nil, apperrors.NewForbidden("forbidden access")
	}
	return order, nil
}

// PayOrder marks the subject's order as paid and records the payment.
func (s *OrderService) PayOrder(ctx context.Context, subject, id, transactionID string, amount float64) (*domain.UpdateResult, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, apperrors.NewValidationError("transactionId is required", nil)
	}
	if amount < 0 {
		return nil, apperrors.NewValidationError("amount must not be negative", nil)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.StoreError("order", err)
	}
	if order.Email != subject {
		return nil, apperrors.NewForbidden("forbidden access")
	}

	payment := &domain.Payment{
		OrderID:       order.ID,
		Email:         subject,
		TransactionID: transactionID,
		Amount:        amount,
	}
	result, err := s.orders.MarkPaid(ctx, payment)
	if err != nil {
		return nil, apperrors.StoreError("order", err)
	}
	if result.ModifiedCount > 0 {
		s.publish(ctx, events.Event{
			Type:    events.EventOrderPaid,
			Subject: order.ID,
			Actor:   subject,
			Payload: events.OrderPaidPayload{OrderID: order.ID, TransactionID: transactionID, Amount: amount},
		})
	}
	return result, nil
}

// DeleteOrder removes an order by id.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) (*domain.DeleteResult, error) {
	n, err := s.orders.Delete(ctx, id)
	if err != nil {
		return nil, apperrors.StoreError("order", err)
	}
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

// PaymentsFor lists the payments made by email.
func (s *OrderService) PaymentsFor(ctx context.Context, email string) ([]*domain.Payment, error) {
	payments, err := s.payments.ListByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.StoreError("payment", err)
	}
	return payments, nil
}
