package port

import (
	"context"

	"github.com/rl1809/shop/internal/core/domain"
)

type UserRepository interface {
	// CreateUser fails with domain.ErrEmailTaken when the email is in use
	CreateUser(ctx context.Context, user domain.User) error

	// GetUserByID returns nil, nil when absent
	GetUserByID(ctx context.Context, id string) (*domain.User, error)

	// GetUserByEmail returns nil, nil when absent
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}
