package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexiq/storefront-api/internal/domain"
	"github.com/nexiq/storefront-api/internal/events"
)

type orderFixture struct {
	svc    *OrderService
	orders *memoryOrders
	users  *memoryUsers
	rec    *recorder
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	orders := newMemoryOrders()
	users := newMemoryUsers(
		&domain.User{Email: "ada@nexiq.example", Role: domain.RoleAdmin},
		&domain.User{Email: "bob@nexiq.example", Role: domain.RoleStandard},
	)
	dispatcher, rec := newRecordingDispatcher(events.EventOrderPlaced, events.EventOrderPaid)
	svc := NewOrderService(OrderDependencies{
		OrderRepo:   orders,
		PaymentRepo: memoryPayments{orders: orders},
		Users:       users,
		Dispatcher:  dispatcher,
		Logger:      zap.NewNop(),
	})
	return &orderFixture{svc: svc, orders: orders, users: users, rec: rec}
}

func TestPlaceOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.svc.PlaceOrder(ctx, "bob@nexiq.example", domain.Document{
		"productId": "p-1",
		"quantity":  2,
		"paid":      true,
		"email":     "ada@nexiq.example",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "bob@nexiq.example", order.Email)
	assert.False(t, order.Paid)
	assert.NotContains(t, order.Details, "paid")
	assert.NotContains(t, order.Details, "email")
	assert.Equal(t, "p-1", order.Details["productId"])

	mine, err := f.svc.OrdersFor(ctx, "bob@nexiq.example")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := f.svc.OrdersFor(ctx, "ada@nexiq.example")
	require.NoError(t, err)
	assert.Empty(t, theirs)

	all, err := f.svc.AllOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.Equal(t, []events.EventType{events.EventOrderPlaced}, f.rec.types())
}

func TestPlaceOrderRejectsEmpty(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.svc.PlaceOrder(context.Background(), "bob@nexiq.example", domain.Document{})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestGetOrderVisibility(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order, err := f.svc.PlaceOrder(ctx, "bob@nexiq.example", domain.Document{"productId": "p-1"})
	require.NoError(t, err)

	got, err := f.svc.GetOrder(ctx, "bob@nexiq.example", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	got, err = f.svc.GetOrder(ctx, "ada@nexiq.example", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.svc.GetOrder(ctx, "eve@nexiq.example", order.ID)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = f.svc.GetOrder(ctx, "bob@nexiq.example", "missing")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestPayOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order, err := f.svc.PlaceOrder(ctx, "bob@nexiq.example", domain.Document{"productId": "p-1"})
	require.NoError(t, err)

	t.Run("only the owner pays", func(t *testing.T) {
		_, err := f.svc.PayOrder(ctx, "ada@nexiq.example", order.ID, "pi_123", 42.5)
		assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	})

	t.Run("transaction id is required", func(t *testing.T) {
		_, err := f.svc.PayOrder(ctx, "bob@nexiq.example", order.ID, "  ", 42.5)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	})

	t.Run("negative amount is rejected", func(t *testing.T) {
		_, err := f.svc.PayOrder(ctx, "bob@nexiq.example", order.ID, "pi_123", -1)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	})

	t.Run("owner pays", func(t *testing.T) {
		result, err := f.svc.PayOrder(ctx, "bob@nexiq.example", order.ID, "pi_123", 42.5)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.ModifiedCount)

		got, err := f.svc.GetOrder(ctx, "bob@nexiq.example", order.ID)
		require.NoError(t, err)
		assert.True(t, got.Paid)
		require.NotNil(t, got.TransactionID)
		assert.Equal(t, "pi_123", *got.TransactionID)

		payments, err := f.svc.PaymentsFor(ctx, "bob@nexiq.example")
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, order.ID, payments[0].OrderID)
		assert.InDelta(t, 42.5, payments[0].Amount, 0.001)
	})

	t.Run("repeated payment is matched but not modified", func(t *testing.T) {
		result, err := f.svc.PayOrder(ctx, "bob@nexiq.example", order.ID, "pi_123", 42.5)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.MatchedCount)
		assert.Equal(t, int64(0), result.ModifiedCount)

		payments, err := f.svc.PaymentsFor(ctx, "bob@nexiq.example")
		require.NoError(t, err)
		assert.Len(t, payments, 1)
	})

	assert.Equal(t, []events.EventType{events.EventOrderPlaced, events.EventOrderPaid}, f.rec.types())
}

func TestDeleteOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order, err := f.svc.PlaceOrder(ctx, "bob@nexiq.example", domain.Document{"productId": "p-1"})
	require.NoError(t, err)

	result, err := f.svc.DeleteOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.DeletedCount)

	result, err = f.svc.DeleteOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.DeletedCount)
}

func TestOrderStoreFailure(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.err = errStoreDown

	_, err := f.svc.AllOrders(context.Background())
	assert.Equal(t, http.StatusBadGateway, statusOf(t, err))

	_, err = f.svc.PaymentsFor(context.Background(), "bob@nexiq.example")
	assert.Equal(t, http.StatusBadGateway, statusOf(t, err))
}
