package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/shop/internal/core/domain"
	"github.com/rl1809/shop/internal/port"
)

const (
	idempotencyKeyPrefix = "idempotency:order:"
	completeAttempts     = 2
)

type OrderService struct {
	products port.ProductRepository
	orders   port.OrderRepository
	idem     port.IdempotencyStore
	now      func() time.Time
}

// NewOrderService builds the order engine. idem may be nil, in which case
// idempotency keys are ignored.
func NewOrderService(products port.ProductRepository, orders port.OrderRepository, idem port.IdempotencyStore) *OrderService {
	return &OrderService{
		products: products,
		orders:   orders,
		idem:     idem,
		now:      time.Now,
	}
}

// PlaceOrder validates lines against current stock, then creates the order,
// its items and the stock decrements as one atomic unit.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, lines []domain.OrderLine) (*domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	snapshots, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[string]domain.Product, len(snapshots))
	for _, p := range snapshots {
		if p.IsActive {
			byID[p.ID] = p
		}
	}

	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, domain.NotFound("product", missing...)
	}

	now := s.now()
	order := domain.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    domain.OrderStatusPending,
		Items:     make([]domain.OrderItem, 0, len(lines)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	var total int64
	for i, l := range lines {
		p := byID[l.ProductID]
		if p.PriceCents > 0 && (l.Quantity > math.MaxInt64/p.PriceCents ||
			total > math.MaxInt64-l.Quantity*p.PriceCents) {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "order total too large")
		}
		total += l.Quantity * p.PriceCents
		if l.Quantity > p.Stock {
			return nil, &domain.InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: l.Quantity,
				Available: p.Stock,
			}
		}
		order.Items = append(order.Items, domain.OrderItem{
			ID:             uuid.NewString(),
			OrderID:        order.ID,
			ProductID:      p.ID,
			Quantity:       l.Quantity,
			UnitPriceCents: p.PriceCents,
		})
	}
	order.TotalCents = domain.SumItems(order.Items)

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			if p, ok := byID[stockErr.ProductID]; ok && stockErr.Name == "" {
				stockErr.Name = p.Name
			}
			return nil, stockErr
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	zap.L().Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.Int("items", len(order.Items)),
		zap.Int64("total_cents", order.TotalCents))
	return &order, nil
}

// PlaceOrderOnce is PlaceOrder guarded by a client supplied idempotency key.
// Replaying a completed key returns the order created by the first request.
// An empty key, or a service without an idempotency store, places normally.
func (s *OrderService) PlaceOrderOnce(ctx context.Context, userID, key string, lines []domain.OrderLine) (*domain.Order, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" || s.idem == nil {
		order, err := s.PlaceOrder(ctx, userID, lines)
		return order, false, err
	}

	storeKey := fmt.Sprintf("%s%s:%s", idempotencyKeyPrefix, userID, key)
	ok, err := s.idem.Reserve(ctx, storeKey)
	if err != nil {
		return nil, false, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		orderID, err := s.idem.Lookup(ctx, storeKey)
		if err != nil {
			return nil, false, fmt.Errorf("idempotency lookup failed: %w", err)
		}
		if orderID == "" {
			return nil, false, domain.ErrDuplicateRequest
		}
		order, err := s.GetOrder(ctx, orderID)
		if err != nil {
			return nil, false, err
		}
		return order, true, nil
	}

	order, err := s.PlaceOrder(ctx, userID, lines)
	if err != nil {
		if relErr := s.idem.Release(ctx, storeKey); relErr != nil {
			zap.L().Error("failed to release idempotency key", zap.String("key", storeKey), zap.Error(relErr))
		}
		return nil, false, err
	}
	s.completeKey(ctx, storeKey, order.ID)
	return order, false, nil
}

// completeKey records the created order under the key, retrying once. The
// order already exists, so a lost record only weakens replay detection until
// the pending marker expires.
func (s *OrderService) completeKey(ctx context.Context, key, orderID string) {
	var err error
	for attempt := 0; attempt < completeAttempts; attempt++ {
		if err = s.idem.Complete(ctx, key, orderID); err == nil {
			return
		}
		zap.L().Warn("failed to record idempotency key",
			zap.String("key", key), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	zap.L().Error("giving up on idempotency key", zap.String("key", key),
		zap.String("order_id", orderID), zap.Error(err))
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, domain.NotFound("order", id)
	}
	return order, nil
}

// GetOrderFor is GetOrder restricted to the owner of the order or an admin.
func (s *OrderService) GetOrderFor(ctx context.Context, caller domain.Identity, id string) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && order.UserID != caller.UserID {
		return nil, fmt.Errorf("%w: order belongs to another user", domain.ErrForbidden)
	}
	return order, nil
}

// ListOrders scopes non-admin callers to their own orders.
func (s *OrderService) ListOrders(ctx context.Context, caller domain.Identity, status domain.OrderStatus) ([]domain.Order, error) {
	if status != "" && !status.Valid() {
		return nil, domain.Invalid("status", fmt.Sprintf("unknown order status %q", status))
	}
	filter := domain.OrderFilter{Status: status}
	if !caller.IsAdmin() {
		filter.UserID = caller.UserID
	}
	orders, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func validateLines(lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return domain.Invalid("items", "order must have at least one item")
	}
	seen := make(map[string]struct{}, len(lines))
	for i, l := range lines {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(l.ProductID) == "" {
			return domain.Invalid(field+".product_id", "must not be empty")
		}
		if l.Quantity <= 0 {
			return domain.Invalid(field+".quantity", "must be > 0")
		}
		if _, dup := seen[l.ProductID]; dup {
			return domain.Invalid(field+".product_id", "duplicate product "+l.ProductID)
		}
		seen[l.ProductID] = struct{}{}
	}
	return nil
}
