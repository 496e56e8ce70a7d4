package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/shop/internal/core/domain"
	"github.com/rl1809/shop/internal/core/service"
)

type seedUser struct {
	email    string
	password string
	role     domain.Role
}

var seedUsers = []seedUser{
	{"admin@local.com", "adminpass", domain.RoleAdmin},
	{"user1@local.com", "userpass", domain.RoleUser},
	{"user2@local.com", "userpass", domain.RoleUser},
}

var seedProducts = []service.CreateProductInput{
	{Name: "Product A", PriceCents: 1000, Stock: 10},
	{Name: "Product B", PriceCents: 2500, Stock: 5},
}

// seed creates the demo accounts and catalog. Running it again is a no-op.
func (a *Application) seed(ctx context.Context) error {
	if err := a.checkUsers(ctx); err != nil {
		return err
	}
	return a.checkProducts(ctx)
}

func (a *Application) checkUsers(ctx context.Context) error {
	for _, u := range seedUsers {
		_, err := a.Auth.CreateUser(ctx, u.email, u.password, u.role)
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("create user %s: %w", u.email, err)
		}
		zap.S().Infof("seeded %s user %s", u.role, u.email)
	}
	return nil
}

func (a *Application) checkProducts(ctx context.Context) error {
	existing, err := a.Products.List(ctx, domain.ProductFilter{})
	if err != nil {
		return err
	}
	names := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		names[p.Name] = struct{}{}
	}
	for _, in := range seedProducts {
		if _, ok := names[in.Name]; ok {
			continue
		}
		p, err := a.Products.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("create product %s: %w", in.Name, err)
		}
		zap.S().Infof("seeded product %s (%s)", p.Name, p.ID)
	}
	return nil
}
