package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/99minutos/identity-system/internal/core/domain"
)

// UserRepository defines persistence of user records. Implementations must
// enforce username and email uniqueness atomically with the insert.
type UserRepository interface {
	// Save inserts u when it is new, otherwise replaces the stored record.
	Save(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	FindAll(ctx context.Context, page domain.PageRequest) (domain.Page[*domain.User], error)
	// Delete removes the user with id. Deleting a missing user is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}

// RoleRepository defines persistence of role grants. Implementations must
// reject a second grant of the same (user, role) pair with
// domain.ErrRoleAlreadyGranted.
type RoleRepository interface {
	Save(ctx context.Context, r *domain.Role) (*domain.Role, error)
	// DeleteByUserAndRole removes every grant of role to userID. Deleting a
	// grant that does not exist is not an error.
	DeleteByUserAndRole(ctx context.Context, userID uuid.UUID, role string) error
	FindAllByUsername(ctx context.Context, username string) ([]domain.Role, error)
}
