package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/identity-system/internal/core/domain"
)

// Private claim names. Subject, issued-at and expiry travel as the
// registered "sub", "iat" and "exp" claims.
const (
	claimEmail        = "email"
	claimPasswordHash = "password_hash"
	claimUserID       = "user_id"
	claimRoles        = "roles"
)

// wireClaims is the payload signed into every token.
type wireClaims struct {
	jwt.RegisteredClaims
	Email        string   `json:"email"`
	PasswordHash string   `json:"password_hash"`
	UserID       string   `json:"user_id"`
	Roles        []string `json:"roles"`
}

// Claims is the decoded content of a token.
type Claims struct {
	Subject      string
	Email        string
	PasswordHash string
	UserID       uuid.UUID
	Roles        []string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

func newWireClaims(p domain.Principal, now time.Time, ttl time.Duration) *wireClaims {
	roles := p.Roles
	if roles == nil {
		roles = []string{}
	}
	return &wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		UserID:       p.UserID.String(),
		Roles:        roles,
	}
}

// claimsFromMap extracts the required claims, failing with
// domain.ErrMalformedToken when one is absent or of the wrong shape.
func claimsFromMap(m jwt.MapClaims) (Claims, error) {
	var c Claims
	var err error

	if c.Subject, err = m.GetSubject(); err != nil || c.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", domain.ErrMalformedToken)
	}
	if c.Email, err = stringClaim(m, claimEmail); err != nil {
		return Claims{}, err
	}
	if c.PasswordHash, err = stringClaim(m, claimPasswordHash); err != nil {
		return Claims{}, err
	}

	rawID, err := stringClaim(m, claimUserID)
	if err != nil {
		return Claims{}, err
	}
	if c.UserID, err = uuid.Parse(rawID); err != nil {
		return Claims{}, fmt.Errorf("%w: user_id is not a uuid", domain.ErrMalformedToken)
	}

	if c.Roles, err = rolesClaim(m); err != nil {
		return Claims{}, err
	}

	if iat, err := m.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := m.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

func stringClaim(m jwt.MapClaims, name string) (string, error) {
	raw, ok := m[name]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", domain.ErrMalformedToken, name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string", domain.ErrMalformedToken, name)
	}
	return s, nil
}

func rolesClaim(m jwt.MapClaims) ([]string, error) {
	raw, ok := m[claimRoles]
	if !ok {
		return nil, fmt.Errorf("%w: there are no roles in the token", domain.ErrMalformedToken)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: roles is not a list", domain.ErrMalformedToken)
	}
	roles := make([]string, 0, len(list))
	for _, r := range list {
		s, ok := r.(string)
		if !ok {
			return nil, fmt.Errorf("%w: roles must be strings", domain.ErrMalformedToken)
		}
		roles = append(roles, s)
	}
	return roles, nil
}
