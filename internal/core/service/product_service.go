package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/shop/internal/core/domain"
	"github.com/rl1809/shop/internal/port"
)

type CreateProductInput struct {
	Name       string
	PriceCents int64
	Stock      int64
	IsActive   *bool
}

type ProductService struct {
	repo port.ProductRepository
	now  func() time.Time
}

func NewProductService(repo port.ProductRepository) *ProductService {
	return &ProductService{repo: repo, now: time.Now}
}

func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "must not be blank")
	}
	if in.PriceCents < 0 {
		return nil, domain.Invalid("price_cents", "must be >= 0")
	}
	if in.Stock < 0 {
		return nil, domain.Invalid("stock", "must be >= 0")
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	now := s.now()
	p := domain.Product{
		ID:         uuid.NewString(),
		Name:       name,
		PriceCents: in.PriceCents,
		Stock:      in.Stock,
		IsActive:   active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	zap.L().Info("product created", zap.String("product_id", p.ID), zap.String("name", p.Name))
	return &p, nil
}

func (s *ProductService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, domain.NotFound("product", id)
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.Get(ctx, id)
	}
	p, err := s.repo.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if p == nil {
		return nil, domain.NotFound("product", id)
	}
	return p, nil
}

// SoftDelete marks the product inactive. Deleting an inactive product is an
// error, not a no-op.
func (s *ProductService) SoftDelete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return fmt.Errorf("product %s: %w", id, domain.ErrProductInactive)
	}
	inactive := false
	updated, err := s.repo.UpdateProduct(ctx, id, domain.ProductPatch{IsActive: &inactive})
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if updated == nil {
		return domain.NotFound("product", id)
	}
	zap.L().Info("product deactivated", zap.String("product_id", id))
	return nil
}
