// Package token encodes a principal into a signed, self-contained bearer
// token and recovers it again.
//
// Tokens are HS256 JWS compact serializations. They carry the username,
// email, password hash, user id and role names, so a request can be
// authenticated without a storage round trip. A consequence is that role or
// password changes only take effect once previously issued tokens expire.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/identity-system/internal/core/domain"
)

// DefaultTTL is used when a codec is built with a non-positive ttl.
const DefaultTTL = 24 * time.Hour

var validMethods = []string{jwt.SigningMethodHS256.Alg()}

// Issue signs the claims of p with secret. The token expires ttl from now.
func Issue(p domain.Principal, secret string, ttl time.Duration) (string, error) {
	return issueAt(p, secret, ttl, time.Now())
}

// Verify reports whether token is a well-formed HS256 token signed with
// secret that has not expired. It never panics or returns an error.
func Verify(token, secret string) bool {
	return verifyAt(token, secret, time.Now)
}

// Decode parses the claims of token without checking its signature. Callers
// must Verify the token before trusting the result.
func Decode(token string) (Claims, error) {
	m := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, m); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
	return claimsFromMap(m)
}

// ToPrincipal decodes token into a Principal with derived authorities. It
// must only be called on a token that passed Verify.
func ToPrincipal(token string) (domain.Principal, error) {
	c, err := Decode(token)
	if err != nil {
		return domain.Principal{}, err
	}
	return domain.NewPrincipal(c.UserID, c.Subject, c.PasswordHash, c.Email, c.Roles), nil
}

func issueAt(p domain.Principal, secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("token: empty signing secret")
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, newWireClaims(p, now, ttl))
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func verifyAt(token, secret string, now func() time.Time) bool {
	if token == "" || secret == "" {
		return false
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods(validMethods), jwt.WithTimeFunc(now))
	return err == nil && parsed.Valid
}

// Codec binds the signing secret and token lifetime of a deployment.
type Codec struct {
	secret string
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec returns a Codec signing with secret. A non-positive ttl falls back
// to DefaultTTL.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: empty signing secret")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: secret, ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

func (c *Codec) Issue(p domain.Principal) (string, error) {
	return issueAt(p, c.secret, c.ttl, c.now())
}

func (c *Codec) Verify(token string) bool {
	return verifyAt(token, c.secret, c.now)
}

func (c *Codec) Decode(token string) (Claims, error) {
	return Decode(token)
}

func (c *Codec) ToPrincipal(token string) (domain.Principal, error) {
	return ToPrincipal(token)
}
