package ports

import (
	"context"

	"github.com/99minutos/identity-system/internal/core/domain"
)

// TokenCodec issues and verifies self-contained bearer tokens.
type TokenCodec interface {
	Issue(p domain.Principal) (string, error)
	// Verify reports whether token is well formed and carries a valid
	// signature. It never returns an error.
	Verify(token string) bool
	ToPrincipal(token string) (domain.Principal, error)
}

// PasswordHasher is a one-way salted password hash.
type PasswordHasher interface {
	Encode(plaintext string) (string, error)
	Matches(plaintext, hash string) bool
}

// AuthenticationManager verifies a username/password pair and resolves the
// principal it belongs to. It returns domain.ErrBadCredentials on rejection.
type AuthenticationManager interface {
	Authenticate(ctx context.Context, username, password string) (domain.Principal, error)
}
