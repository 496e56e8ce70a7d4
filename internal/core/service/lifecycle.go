package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/shop/internal/core/domain"
	"github.com/rl1809/shop/internal/port"
)

// OrderLifecycle owns order status changes. PENDING is the only state that
// can be left; PAID and CANCELLED are terminal.
type OrderLifecycle struct {
	orders port.OrderRepository
	now    func() time.Time
}

func NewOrderLifecycle(orders port.OrderRepository) *OrderLifecycle {
	return &OrderLifecycle{orders: orders, now: time.Now}
}

// ParseStatus accepts a status name in any letter case.
func ParseStatus(s string) domain.OrderStatus {
	return domain.OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
}

// ChangeStatus moves a PENDING order to PAID, or to CANCELLED restoring the
// stock of every line.
func (l *OrderLifecycle) ChangeStatus(ctx context.Context, orderID string, target domain.OrderStatus) (*domain.Order, error) {
	order, err := l.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, domain.NotFound("order", orderID)
	}
	if order.Status != domain.OrderStatusPending {
		return nil, &domain.TransitionError{OrderID: orderID, From: order.Status, To: target}
	}

	now := l.now()
	switch target {
	case domain.OrderStatusPaid:
		err = l.orders.MarkOrderPaid(ctx, orderID, now)
	case domain.OrderStatusCancelled:
		err = l.orders.CancelOrder(ctx, orderID, now)
	default:
		return nil, domain.Invalid("status", fmt.Sprintf("invalid target status %q", target))
	}
	if err != nil {
		return nil, fmt.Errorf("change status of order %s: %w", orderID, err)
	}

	zap.L().Info("order status changed",
		zap.String("order_id", orderID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(target)))

	updated, err := l.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}
	if updated == nil {
		return nil, domain.NotFound("order", orderID)
	}
	return updated, nil
}
