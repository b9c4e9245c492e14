package service

import (
	"context"
	"errors"

	"github.com/99minutos/identity-system/internal/core/domain"
	"github.com/99minutos/identity-system/internal/core/ports"
)

// PasswordAuthenticator resolves a principal from stored credentials.
type PasswordAuthenticator struct {
	store  *CredentialStore
	hasher ports.PasswordHasher
}

func NewPasswordAuthenticator(store *CredentialStore, hasher ports.PasswordHasher) *PasswordAuthenticator {
	return &PasswordAuthenticator{store: store, hasher: hasher}
}

// Authenticate returns domain.ErrBadCredentials for an unknown username as
// well as for a wrong password, so callers cannot probe for accounts.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, password string) (domain.Principal, error) {
	if username == "" || password == "" {
		return domain.Principal{}, domain.ErrBadCredentials
	}

	user, err := a.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Principal{}, domain.ErrBadCredentials
		}
		return domain.Principal{}, err
	}

	if !a.hasher.Matches(password, user.PasswordHash) {
		return domain.Principal{}, domain.ErrBadCredentials
	}

	return domain.PrincipalFromUser(user), nil
}
