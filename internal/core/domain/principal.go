package domain

import "github.com/google/uuid"

// AuthorityPrefix is prepended to a role name to form the authority string
// used by authorization checks, e.g. "ADMIN" -> "ROLE_ADMIN".
const AuthorityPrefix = "ROLE_"

// Principal is the authenticated identity attached to a single request.
// It is rebuilt from a token on every request and never persisted.
type Principal struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	Roles        []string  `json:"roles"`
	Authorities  []string  `json:"authorities"`
}

// NewPrincipal builds a Principal and derives its authorities from roles.
func NewPrincipal(userID uuid.UUID, username, passwordHash, email string, roles []string) Principal {
	rs := make([]string, len(roles))
	copy(rs, roles)
	return Principal{
		UserID:       userID,
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		Roles:        rs,
		Authorities:  Authorities(rs),
	}
}

// PrincipalFromUser maps a stored user and its grants to a Principal.
func PrincipalFromUser(u *User) Principal {
	return NewPrincipal(u.ID, u.Username, u.PasswordHash, u.Email, u.RoleNames())
}

// Authorities prefixes each role name with AuthorityPrefix.
func Authorities(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, AuthorityPrefix+r)
	}
	return out
}

// HasAuthority reports whether p carries the given authority string.
func (p Principal) HasAuthority(authority string) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// HasRole reports whether p holds the named role.
func (p Principal) HasRole(role string) bool {
	return p.HasAuthority(AuthorityPrefix + role)
}
