package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// DefaultRole is granted to every account at sign-up.
const DefaultRole = RoleUser

// User models a registered identity. Username and Email are globally unique.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleNames returns the names of the roles granted to u, in grant order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Role is a single (user, role-name) grant. The pair is unique.
type Role struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Name      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRole builds a grant of name for u with a fresh identifier.
func NewRole(u *User, name string) *Role {
	now := time.Now().UTC()
	return &Role{
		ID:        uuid.New(),
		UserID:    u.ID,
		Username:  u.Username,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
