package port

import (
	"context"

	"github.com/rl1809/shop/internal/core/domain"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product domain.Product) error

	// GetProduct returns nil, nil when no product has the id
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// GetProductsByIDs loads every existing product among ids in one read.
	// Missing ids are simply absent from the result.
	GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error)

	// ListProducts returns matching products in insertion order
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)

	// UpdateProduct writes only the fields set in patch and returns the
	// resulting row, or nil, nil when the product does not exist
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
}
