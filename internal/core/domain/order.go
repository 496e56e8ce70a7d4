package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusCancelled
}

// CanTransition reports whether an order in status s may move to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	return s == OrderStatusPending && next.Terminal()
}

type Order struct {
	ID         string
	UserID     string
	Status     OrderStatus
	TotalCents int64
	Items      []OrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderItem is a line of an order. UnitPriceCents is the product price at
// order time and never changes afterwards.
type OrderItem struct {
	ID             string
	OrderID        string
	ProductID      string
	Quantity       int64
	UnitPriceCents int64
}

func (i OrderItem) ExtensionCents() int64 {
	return i.Quantity * i.UnitPriceCents
}

// SumItems returns Σ quantity × unit price over items.
func SumItems(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.ExtensionCents()
	}
	return total
}

// OrderLine is one requested {product, quantity} pair of a placement.
type OrderLine struct {
	ProductID string
	Quantity  int64
}

type OrderFilter struct {
	UserID string
	Status OrderStatus
}

func (f OrderFilter) Matches(o Order) bool {
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return true
}
