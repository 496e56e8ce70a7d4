package port

import (
	"context"
	"time"

	"github.com/rl1809/shop/internal/core/domain"
)

type OrderRepository interface {
	// CreateOrder persists the order and its items and decrements the stock of
	// every referenced product, all in one atomic unit. A decrement that would
	// take stock below zero aborts the unit with *domain.InsufficientStockError.
	CreateOrder(ctx context.Context, order domain.Order) error

	// GetOrder returns the order with its items, or nil, nil when absent
	GetOrder(ctx context.Context, id string) (*domain.Order, error)

	// ListOrders returns matching orders with items, oldest first
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)

	// MarkOrderPaid flips a PENDING order to PAID. Fails with
	// *domain.TransitionError if the order is no longer PENDING.
	MarkOrderPaid(ctx context.Context, id string, at time.Time) error

	// CancelOrder restores the stock of every item and flips a PENDING order to
	// CANCELLED in one atomic unit. Fails with *domain.TransitionError, without
	// touching stock, if the order is no longer PENDING.
	CancelOrder(ctx context.Context, id string, at time.Time) error
}
