package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rl1809/shop/internal/adapter/storage"
	"github.com/rl1809/shop/internal/core/domain"
)

// seedProduct stores an active product directly in the store.
func seedProduct(t *testing.T, store *storage.MemoryAdapter, id, name string, price, stock int64) {
	t.Helper()
	now := time.Now()
	require.NoError(t, store.CreateProduct(context.Background(), domain.Product{
		ID:         id,
		Name:       name,
		PriceCents: price,
		Stock:      stock,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}))
}

func stockOf(t *testing.T, store *storage.MemoryAdapter, id string) int64 {
	t.Helper()
	p, err := store.GetProduct(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func newOrderFixture(t *testing.T) (*OrderService, *OrderLifecycle, *storage.MemoryAdapter) {
	t.Helper()
	store := storage.NewMemoryAdapter()
	seedProduct(t, store, "prod-a", "Product A", 1000, 10)
	seedProduct(t, store, "prod-b", "Product B", 2500, 5)
	return NewOrderService(store, store, storage.NewMemoryIdempotencyStore()),
		NewOrderLifecycle(store), store
}
