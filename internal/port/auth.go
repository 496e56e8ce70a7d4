package port

import "github.com/rl1809/shop/internal/core/domain"

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type TokenIssuer interface {
	Issue(user domain.User) (string, error)

	// Verify parses a token and returns the identity it carries; fails with
	// domain.ErrUnauthorized for any invalid or expired token
	Verify(token string) (domain.Identity, error)
}
