package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-system/internal/core/domain"
	"github.com/99minutos/identity-system/internal/core/ports"
)

const defaultUserTTL = 5 * time.Minute

// CachedUserRepository is a read-through cache in front of a
// ports.UserRepository. Lookups by username and by id are served from Redis
// when present; Save evicts both entries of the written user.
//
// Key format: user:name:<username> and user:id:<uuid>
type CachedUserRepository struct {
	next   ports.UserRepository
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewCachedUserRepository wraps next. A non-positive ttl uses defaultUserTTL.
func NewCachedUserRepository(next ports.UserRepository, client *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedUserRepository {
	if ttl <= 0 {
		ttl = defaultUserTTL
	}
	return &CachedUserRepository{next: next, client: client, ttl: ttl, log: log}
}

var _ ports.UserRepository = (*CachedUserRepository)(nil)

// cachedUser keeps the password hash, which domain.User hides from JSON.
type cachedUser struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c cachedUser) toDomain() *domain.User {
	return &domain.User{
		ID:           c.ID,
		Username:     c.Username,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Roles:        []domain.Role{},
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func nameKey(username string) string { return "user:name:" + username }
func idKey(id uuid.UUID) string        { return "user:id:" + id.String() }

func (r *CachedUserRepository) Save(ctx context.Context, u *domain.User) (*domain.User, error) {
	saved, err := r.next.Save(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := r.client.Del(ctx, nameKey(saved.Username), idKey(saved.ID)).Err(); err != nil {
		r.log.Warn().Err(err).Str("username", saved.Username).Msg("user cache eviction failed")
	}
	return saved, nil
}

func (r *CachedUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if u, ok := r.get(ctx, nameKey(username)); ok {
		return u, nil
	}
	u, err := r.next.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	r.put(ctx, u)
	return u, nil
}

func (r *CachedUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if u, ok := r.get(ctx, idKey(id)); ok {
		return u, nil
	}
	u, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.put(ctx, u)
	return u, nil
}

// ExistsByUsernameOrEmail always asks the backing store; the sign-up
// uniqueness check must not see a stale cache.
func (r *CachedUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	return r.next.ExistsByUsernameOrEmail(ctx, username, email)
}

func (r *CachedUserRepository) FindAll(ctx context.Context, page domain.PageRequest) (domain.Page[*domain.User], error) {
	return r.next.FindAll(ctx, page)
}

// Delete removes the user from the backing store and evicts its entries.
// Both keys are always written together, so the id entry names the
// username key to evict.
func (r *CachedUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	keys := []string{idKey(id)}
	if u, ok := r.get(ctx, idKey(id)); ok {
		keys = append(keys, nameKey(u.Username))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.log.Warn().Err(err).Str("user_id", id.String()).Msg("user cache eviction failed")
	}
	return nil
}

func (r *CachedUserRepository) get(ctx context.Context, key string) (*domain.User, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn().Err(err).Str("key", key).Msg("user cache read failed")
		}
		return nil, false
	}
	var c cachedUser
	if err := json.Unmarshal(raw, &c); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("user cache entry corrupt")
		return nil, false
	}
	return c.toDomain(), true
}

func (r *CachedUserRepository) put(ctx context.Context, u *domain.User) {
	raw, err := json.Marshal(cachedUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	})
	if err != nil {
		return
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, nameKey(u.Username), raw, r.ttl)
		p.Set(ctx, idKey(u.ID), raw, r.ttl)
		return nil
	})
	if err != nil {
		r.log.Warn().Err(fmt.Errorf("user cache write: %w", err)).Str("username", u.Username).Msg("user cache write failed")
	}
}
