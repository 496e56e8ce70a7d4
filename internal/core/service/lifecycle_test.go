package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/shop/internal/adapter/storage"
	"github.com/rl1809/shop/internal/core/domain"
)

func TestChangeStatus_PayThenCancelFails(t *testing.T) {
	svc, lifecycle, store := newOrderFixture(t)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, "user-1", []domain.OrderLine{{ProductID: "prod-a", Quantity: 2}})
	require.NoError(t, err)

	paid, err := lifecycle.ChangeStatus(ctx, order.ID, domain.OrderStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, paid.Status)

	_, err = lifecycle.ChangeStatus(ctx, order.ID, domain.OrderStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(8), stockOf(t, store, "prod-a"))
}

func TestChangeStatus_CancelRestoresStock(t *testing.T) {
	store := storage.NewMemoryAdapter()
	seedProduct(t, store, "q", "Q", 100, 5)
	seedProduct(t, store, "r", "R", 300, 4)
	svc := NewOrderService(store, store, nil)
	lifecycle := NewOrderLifecycle(store)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, "user-1", []domain.OrderLine{
		{ProductID: "q", Quantity: 3},
		{ProductID: "r", Quantity: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stockOf(t, store, "q"))
	assert.Zero(t, stockOf(t, store, "r"))

	cancelled, err := lifecycle.ChangeStatus(ctx, order.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(5), stockOf(t, store, "q"))
	assert.Equal(t, int64(4), stockOf(t, store, "r"))

	// second cancel fails before touching stock
	_, err = lifecycle.ChangeStatus(ctx, order.ID, domain.OrderStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(5), stockOf(t, store, "q"))
	assert.Equal(t, int64(4), stockOf(t, store, "r"))
}

func TestChangeStatus_Errors(t *testing.T) {
	svc, lifecycle, _ := newOrderFixture(t)
	ctx := context.Background()

	_, err := lifecycle.ChangeStatus(ctx, "missing", domain.OrderStatusPaid)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	order, err := svc.PlaceOrder(ctx, "user-1", []domain.OrderLine{{ProductID: "prod-a", Quantity: 1}})
	require.NoError(t, err)

	_, err = lifecycle.ChangeStatus(ctx, order.ID, domain.OrderStatusPending)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	_, err = lifecycle.ChangeStatus(ctx, order.ID, domain.OrderStatus("SHIPPED"))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, domain.OrderStatusPaid, ParseStatus(" paid "))
	assert.Equal(t, domain.OrderStatusCancelled, ParseStatus("Cancelled"))
	assert.Equal(t, domain.OrderStatus(""), ParseStatus(""))
}
