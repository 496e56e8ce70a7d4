package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/shop/internal/core/domain"
)

func getMySQLAdapter(t *testing.T) *MySQLAdapter {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/shop?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("MySQL not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	adapter := NewMySQLAdapter(db)
	require.NoError(t, adapter.Migrate(context.Background()))
	return adapter
}

func createMySQLProduct(t *testing.T, m *MySQLAdapter, stock int64) domain.Product {
	t.Helper()
	p := newTestProduct(uuid.NewString(), stock)
	p.CreatedAt = p.CreatedAt.UTC().Truncate(time.Microsecond)
	p.UpdatedAt = p.CreatedAt
	require.NoError(t, m.CreateProduct(context.Background(), p))
	return p
}

func TestMySQLCreateOrder_Success(t *testing.T) {
	m := getMySQLAdapter(t)
	ctx := context.Background()
	a := createMySQLProduct(t, m, 10)
	b := createMySQLProduct(t, m, 5)

	order := newTestOrder(uuid.NewString(),
		domain.OrderItem{ID: uuid.NewString(), ProductID: b.ID, Quantity: 1, UnitPriceCents: 250},
		domain.OrderItem{ID: uuid.NewString(), ProductID: a.ID, Quantity: 2, UnitPriceCents: 100},
	)
	require.NoError(t, m.CreateOrder(ctx, order))

	got, err := m.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
	assert.Equal(t, int64(450), got.TotalCents)
	require.Len(t, got.Items, 2)
	assert.Equal(t, b.ID, got.Items[0].ProductID)

	pa, err := m.GetProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), pa.Stock)
}

func TestMySQLCreateOrder_InsufficientStockRollsBack(t *testing.T) {
	m := getMySQLAdapter(t)
	ctx := context.Background()
	a := createMySQLProduct(t, m, 10)
	b := createMySQLProduct(t, m, 1)

	order := newTestOrder(uuid.NewString(),
		domain.OrderItem{ID: uuid.NewString(), ProductID: a.ID, Quantity: 2, UnitPriceCents: 100},
		domain.OrderItem{ID: uuid.NewString(), ProductID: b.ID, Quantity: 2, UnitPriceCents: 100},
	)
	err := m.CreateOrder(ctx, order)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	pa, err := m.GetProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), pa.Stock)

	got, err := m.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	err = m.CreateOrder(ctx, order)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, b.ID, stockErr.ProductID)
	assert.Equal(t, int64(1), stockErr.Available)
}

func TestMySQLCreateOrder_InactiveProductIsNotFound(t *testing.T) {
	m := getMySQLAdapter(t)
	ctx := context.Background()
	a := createMySQLProduct(t, m, 10)
	b := createMySQLProduct(t, m, 10)

	inactive := false
	_, err := m.UpdateProduct(ctx, b.ID, domain.ProductPatch{IsActive: &inactive})
	require.NoError(t, err)

	order := newTestOrder(uuid.NewString(),
		domain.OrderItem{ID: uuid.NewString(), ProductID: a.ID, Quantity: 2, UnitPriceCents: 100},
		domain.OrderItem{ID: uuid.NewString(), ProductID: b.ID, Quantity: 1, UnitPriceCents: 100},
	)
	err = m.CreateOrder(ctx, order)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)

	missing := newTestOrder(uuid.NewString(),
		domain.OrderItem{ID: uuid.NewString(), ProductID: uuid.NewString(), Quantity: 1, UnitPriceCents: 100})
	require.ErrorIs(t, m.CreateOrder(ctx, missing), domain.ErrNotFound)

	pa, err := m.GetProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), pa.Stock)
	pb, err := m.GetProduct(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), pb.Stock)

	got, err := m.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMySQLCreateOrder_Concurrent(t *testing.T) {
	m := getMySQLAdapter(t)
	ctx := context.Background()
	p := createMySQLProduct(t, m, 10)

	var successCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order := newTestOrder(uuid.NewString(),
				domain.OrderItem{ID: uuid.NewString(), ProductID: p.ID, Quantity: 1, UnitPriceCents: 100})
			if err := m.CreateOrder(ctx, order); err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	got, err := m.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(10), successCount.Load())
	assert.Zero(t, got.Stock)
}

func TestMySQLCancelOrder_RestoresOnce(t *testing.T) {
	m := getMySQLAdapter(t)
	ctx := context.Background()
	p := createMySQLProduct(t, m, 5)

	order := newTestOrder(uuid.NewString(),
		domain.OrderItem{ID: uuid.NewString(), ProductID: p.ID, Quantity: 3, UnitPriceCents: 100})
	require.NoError(t, m.CreateOrder(ctx, order))

	require.NoError(t, m.CancelOrder(ctx, order.ID, time.Now()))
	assert.ErrorIs(t, m.CancelOrder(ctx, order.ID, time.Now()), domain.ErrInvalidTransition)
	assert.ErrorIs(t, m.MarkOrderPaid(ctx, order.ID, time.Now()), domain.ErrInvalidTransition)

	got, err := m.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Stock)
}

func TestMySQLUpdateProduct(t *testing.T) {
	m := getMySQLAdapter(t)
	ctx := context.Background()
	p := createMySQLProduct(t, m, 5)

	name := "Renamed " + p.ID[:8]
	inactive := false
	got, err := m.UpdateProduct(ctx, p.ID, domain.ProductPatch{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, name, got.Name)
	assert.False(t, got.IsActive)
	assert.Equal(t, int64(5), got.Stock)

	missing, err := m.UpdateProduct(ctx, uuid.NewString(), domain.ProductPatch{Name: &name})
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := m.ListProducts(ctx, domain.ProductFilter{Query: "renamed " + p.ID[:8]})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
}

func TestMySQLUsers(t *testing.T) {
	m := getMySQLAdapter(t)
	ctx := context.Background()

	u := domain.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, m.CreateUser(ctx, u))

	dup := u
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, m.CreateUser(ctx, dup), domain.ErrAlreadyExists)

	got, err := m.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
}
