package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/99minutos/identity-system/internal/core/domain"
)

// AuthService is the use-case surface consumed by the HTTP layer. Methods
// that read or write the current principal use the security context carried
// by ctx.
type AuthService interface {
	SignUp(ctx context.Context, username, password, email string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context) (domain.Principal, error)
	UpdateSelf(ctx context.Context, email, password string) (*domain.User, error)

	AddRole(ctx context.Context, username, role string) error
	RemoveRole(ctx context.Context, username, role string) error
	ListRoles(ctx context.Context, username string) ([]domain.Role, error)

	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListUsers(ctx context.Context, page domain.PageRequest) (domain.Page[*domain.User], error)
}
