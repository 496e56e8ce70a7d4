package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/shop/internal/core/domain"
	"github.com/rl1809/shop/internal/port"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 30
)

var validate = validator.New()

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)

type AuthService struct {
	users  port.UserRepository
	hasher port.PasswordHasher
	tokens port.TokenIssuer
	now    func() time.Time
}

func NewAuthService(users port.UserRepository, hasher port.PasswordHasher, tokens port.TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, now: time.Now}
}

// Register creates a USER account and returns an access token for it.
func (s *AuthService) Register(ctx context.Context, email, password string) (string, error) {
	user, err := s.CreateUser(ctx, email, password, domain.RoleUser)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(*user)
}

// CreateUser stores a new account with the given role.
func (s *AuthService) CreateUser(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, domain.Invalid("email", "must be a valid email address")
	}
	if n := len(password); n < minPasswordLen || n > maxPasswordLen {
		return nil, domain.Invalid("password", fmt.Sprintf("length must be between %d and %d", minPasswordLen, maxPasswordLen))
	}
	if !role.Valid() {
		return nil, domain.Invalid("role", fmt.Sprintf("unknown role %q", role))
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	zap.L().Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !s.hasher.Compare(user.PasswordHash, password) {
		return "", errInvalidCredentials
	}
	return s.tokens.Issue(*user)
}

// Authenticate resolves a bearer token into the caller identity.
func (s *AuthService) Authenticate(token string) (domain.Identity, error) {
	return s.tokens.Verify(token)
}

// Profile returns the account of the caller.
func (s *AuthService) Profile(ctx context.Context, caller domain.Identity) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user not found", domain.ErrUnauthorized)
	}
	return user, nil
}
