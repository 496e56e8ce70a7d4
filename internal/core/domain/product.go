package domain

import (
	"strings"
	"time"
)

// Product is a catalog entry. Prices are integer cents; stock never drops
// below zero.
type Product struct {
	ID         string
	Name       string
	PriceCents int64
	Stock      int64
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProductFilter narrows a catalog listing. Zero value lists everything.
type ProductFilter struct {
	Query    string
	IsActive *bool
}

// Matches reports whether p passes the filter. Name matching is a
// case-insensitive substring test.
func (f ProductFilter) Matches(p Product) bool {
	if f.IsActive != nil && p.IsActive != *f.IsActive {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		return strings.Contains(strings.ToLower(p.Name), strings.ToLower(q))
	}
	return true
}

// ProductPatch carries the fields of a partial update; nil means unchanged.
type ProductPatch struct {
	Name       *string
	PriceCents *int64
	Stock      *int64
	IsActive   *bool
}

func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.PriceCents == nil && p.Stock == nil && p.IsActive == nil
}

func (p ProductPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return Invalid("name", "must not be blank")
	}
	if p.PriceCents != nil && *p.PriceCents < 0 {
		return Invalid("price_cents", "must be >= 0")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return Invalid("stock", "must be >= 0")
	}
	return nil
}

// Apply returns a copy of prod with the patch applied.
func (p ProductPatch) Apply(prod Product) Product {
	if p.Name != nil {
		prod.Name = strings.TrimSpace(*p.Name)
	}
	if p.PriceCents != nil {
		prod.PriceCents = *p.PriceCents
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
	if p.IsActive != nil {
		prod.IsActive = *p.IsActive
	}
	return prod
}
