package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/99minutos/identity-system/internal/core/domain"
	"github.com/99minutos/identity-system/internal/core/ports"
)

// CredentialStore owns user and role records. Uniqueness of usernames,
// emails and (user, role) pairs is enforced by the repositories; the store
// only composes them and attaches each user's grants.
type CredentialStore struct {
	users ports.UserRepository
	roles ports.RoleRepository
}

func NewCredentialStore(users ports.UserRepository, roles ports.RoleRepository) *CredentialStore {
	return &CredentialStore{users: users, roles: roles}
}

// Exists reports whether any user has the given username OR the given email.
func (s *CredentialStore) Exists(ctx context.Context, username, email string) (bool, error) {
	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

func (s *CredentialStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.withRoles(ctx, u)
}

func (s *CredentialStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withRoles(ctx, u)
}

// ListPaged returns one page of users, each with its roles attached.
func (s *CredentialStore) ListPaged(ctx context.Context, req domain.PageRequest) (domain.Page[*domain.User], error) {
	page, err := s.users.FindAll(ctx, req.Normalize())
	if err != nil {
		return domain.Page[*domain.User]{}, fmt.Errorf("list users: %w", err)
	}
	for i, u := range page.Items {
		if page.Items[i], err = s.withRoles(ctx, u); err != nil {
			return domain.Page[*domain.User]{}, err
		}
	}
	return page, nil
}

// SaveUser inserts or replaces u. Its Roles are not written; grants are
// persisted through GrantRole.
func (s *CredentialStore) SaveUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	return s.users.Save(ctx, u)
}

// DeleteUser removes the user record with id. Its grants are left alone.
func (s *CredentialStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

// GrantRole persists a new grant of roleName to u. A duplicate grant fails
// with the repository's uniqueness error.
func (s *CredentialStore) GrantRole(ctx context.Context, u *domain.User, roleName string) (*domain.Role, error) {
	return s.roles.Save(ctx, domain.NewRole(u, roleName))
}

// RevokeRole deletes every grant of roleName to u. Revoking a role the user
// does not hold is a no-op.
func (s *CredentialStore) RevokeRole(ctx context.Context, u *domain.User, roleName string) error {
	return s.roles.DeleteByUserAndRole(ctx, u.ID, roleName)
}

func (s *CredentialStore) ListRoles(ctx context.Context, username string) ([]domain.Role, error) {
	return s.roles.FindAllByUsername(ctx, username)
}

func (s *CredentialStore) withRoles(ctx context.Context, u *domain.User) (*domain.User, error) {
	roles, err := s.roles.FindAllByUsername(ctx, u.Username)
	if err != nil {
		return nil, fmt.Errorf("load roles of %s: %w", u.Username, err)
	}
	u.Roles = roles
	return u, nil
}
