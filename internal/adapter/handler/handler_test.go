package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rl1809/shop/internal/adapter/auth"
	"github.com/rl1809/shop/internal/adapter/storage"
	"github.com/rl1809/shop/internal/core/domain"
	"github.com/rl1809/shop/internal/core/service"
)

type fixture struct {
	store     *storage.MemoryAdapter
	products  *service.ProductService
	orders    *service.OrderService
	lifecycle *service.OrderLifecycle
	auth      *service.AuthService

	adminToken string
	userToken  string
	otherToken string
	product    *domain.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryAdapter()
	f := &fixture{
		store:     store,
		products:  service.NewProductService(store),
		orders:    service.NewOrderService(store, store, storage.NewMemoryIdempotencyStore()),
		lifecycle: service.NewOrderLifecycle(store),
		auth: service.NewAuthService(store,
			auth.NewBcryptHasher(4),
			auth.NewTokenIssuer("handler-secret", time.Hour)),
	}

	_, err := f.auth.CreateUser(ctx, "admin@local.com", "adminpass", domain.RoleAdmin)
	require.NoError(t, err)
	f.adminToken, err = f.auth.Login(ctx, "admin@local.com", "adminpass")
	require.NoError(t, err)
	f.userToken, err = f.auth.Register(ctx, "user1@local.com", "userpass")
	require.NoError(t, err)
	f.otherToken, err = f.auth.Register(ctx, "user2@local.com", "userpass")
	require.NoError(t, err)

	f.product, err = f.products.Create(ctx, service.CreateProductInput{Name: "Product A", PriceCents: 1000, Stock: 10})
	require.NoError(t, err)
	return f
}

func (f *fixture) stock(t *testing.T) int64 {
	t.Helper()
	p, err := f.store.GetProduct(context.Background(), f.product.ID)
	require.NoError(t, err)
	return p.Stock
}
