package storage

import (
	"context"
	"sync"
	"time"

	"github.com/rl1809/shop/internal/core/domain"
)

// MemoryAdapter keeps every aggregate in process. One mutex serializes all
// units of work, which gives the same all-or-nothing behaviour the MySQL
// transactions provide.
type MemoryAdapter struct {
	mu sync.Mutex

	products     map[string]*domain.Product
	productOrder []string

	orders     map[string]*domain.Order
	orderOrder []string

	users        map[string]*domain.User
	usersByEmail map[string]string
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		products:     make(map[string]*domain.Product),
		orders:       make(map[string]*domain.Order),
		users:        make(map[string]*domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *MemoryAdapter) CreateProduct(ctx context.Context, product domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[product.ID]; ok {
		return domain.ErrAlreadyExists
	}
	p := product
	m.products[p.ID] = &p
	m.productOrder = append(m.productOrder, p.ID)
	return nil
}

func (m *MemoryAdapter) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryAdapter) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Product, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := m.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *MemoryAdapter) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Product, 0, len(m.productOrder))
	for _, id := range m.productOrder {
		p := m.products[id]
		if filter.Matches(*p) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *MemoryAdapter) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	updated := patch.Apply(*p)
	updated.UpdatedAt = time.Now()
	*p = updated
	return &updated, nil
}

// SetStock overwrites the stock of a product. Test and seeding helper.
func (m *MemoryAdapter) SetStock(ctx context.Context, id string, stock int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return domain.NotFound("product", id)
	}
	p.Stock = stock
	return nil
}

func (m *MemoryAdapter) CreateOrder(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[order.ID]; ok {
		return domain.ErrAlreadyExists
	}

	// validate every decrement before applying any of them
	for _, it := range order.Items {
		p, ok := m.products[it.ProductID]
		if !ok || !p.IsActive {
			return domain.NotFound("product", it.ProductID)
		}
		if p.Stock < it.Quantity {
			return &domain.InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: it.Quantity,
				Available: p.Stock,
			}
		}
	}
	for _, it := range order.Items {
		p := m.products[it.ProductID]
		p.Stock -= it.Quantity
		p.UpdatedAt = order.CreatedAt
	}

	o := cloneOrder(order)
	m.orders[o.ID] = &o
	m.orderOrder = append(m.orderOrder, o.ID)
	return nil
}

func (m *MemoryAdapter) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := cloneOrder(*o)
	return &cp, nil
}

func (m *MemoryAdapter) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Order, 0)
	for _, id := range m.orderOrder {
		o := m.orders[id]
		if filter.Matches(*o) {
			out = append(out, cloneOrder(*o))
		}
	}
	return out, nil
}

func (m *MemoryAdapter) MarkOrderPaid(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, err := m.pendingOrder(id, domain.OrderStatusPaid)
	if err != nil {
		return err
	}
	o.Status = domain.OrderStatusPaid
	o.UpdatedAt = at
	return nil
}

func (m *MemoryAdapter) CancelOrder(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, err := m.pendingOrder(id, domain.OrderStatusCancelled)
	if err != nil {
		return err
	}
	for _, it := range o.Items {
		if p, ok := m.products[it.ProductID]; ok {
			p.Stock += it.Quantity
			p.UpdatedAt = at
		}
	}
	o.Status = domain.OrderStatusCancelled
	o.UpdatedAt = at
	return nil
}

func (m *MemoryAdapter) pendingOrder(id string, target domain.OrderStatus) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.NotFound("order", id)
	}
	if o.Status != domain.OrderStatusPending {
		return nil, &domain.TransitionError{OrderID: id, From: o.Status, To: target}
	}
	return o, nil
}

func (m *MemoryAdapter) CreateUser(ctx context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.usersByEmail[user.Email]; ok {
		return domain.ErrEmailTaken
	}
	u := user
	m.users[u.ID] = &u
	m.usersByEmail[u.Email] = u.ID
	return nil
}

func (m *MemoryAdapter) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryAdapter) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.usersByEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *m.users[id]
	return &cp, nil
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o
}
