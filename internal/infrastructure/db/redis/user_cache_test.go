package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/identity-system/internal/core/domain"
)

type countingRepo struct {
	users   map[string]*domain.User
	lookups int
}

func (r *countingRepo) Save(_ context.Context, u *domain.User) (*domain.User, error) {
	clone := *u
	r.users[u.Username] = &clone
	return &clone, nil
}

func (r *countingRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.lookups++
	if u, ok := r.users[username]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *countingRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.lookups++
	for _, u := range r.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *countingRepo) ExistsByUsernameOrEmail(context.Context, string, string) (bool, error) {
	return false, nil
}

func (r *countingRepo) FindAll(context.Context, domain.PageRequest) (domain.Page[*domain.User], error) {
	return domain.Page[*domain.User]{}, nil
}

func (r *countingRepo) Delete(_ context.Context, id uuid.UUID) error {
	for name, u := range r.users {
		if u.ID == id {
			delete(r.users, name)
		}
	}
	return nil
}

func newCache(t *testing.T) (*CachedUserRepository, *countingRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingRepo{users: map[string]*domain.User{}}
	return NewCachedUserRepository(inner, client, time.Minute, zerolog.Nop()), inner, mr
}

func seedUser(t *testing.T, repo *CachedUserRepository) *domain.User {
	t.Helper()
	u, err := repo.Save(context.Background(), &domain.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "a@x.com",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	})
	require.NoError(t, err)
	return u
}

func TestCachedUserRepository_ReadThrough(t *testing.T) {
	repo, inner, mr := newCache(t)
	ctx := context.Background()
	u := seedUser(t, repo)

	first, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	second, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.lookups)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "$2a$10$hash", second.PasswordHash, "cache must keep the hash")
	assert.True(t, mr.Exists("user:id:"+u.ID.String()))

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, 1, inner.lookups, "id lookup should be served from the cache")
}

func TestCachedUserRepository_SaveEvicts(t *testing.T) {
	repo, inner, mr := newCache(t)
	ctx := context.Background()
	u := seedUser(t, repo)

	_, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, mr.Exists("user:name:alice"))

	u.Email = "new@x.com"
	_, err = repo.Save(ctx, u)
	require.NoError(t, err)
	assert.False(t, mr.Exists("user:name:alice"))
	assert.False(t, mr.Exists("user:id:"+u.ID.String()))

	got, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", got.Email)
	assert.Equal(t, 2, inner.lookups)
}

func TestCachedUserRepository_MissNotCached(t *testing.T) {
	repo, inner, mr := newCache(t)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.False(t, mr.Exists("user:name:ghost"))
	assert.Equal(t, 1, inner.lookups)
}

func TestCachedUserRepository_Expiry(t *testing.T) {
	repo, inner, mr := newCache(t)
	ctx := context.Background()
	seedUser(t, repo)

	_, _ = repo.FindByUsername(ctx, "alice")
	mr.FastForward(2 * time.Minute)
	_, _ = repo.FindByUsername(ctx, "alice")

	assert.Equal(t, 2, inner.lookups)
}

func TestCachedUserRepository_RedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingRepo{users: map[string]*domain.User{
		"alice": {ID: uuid.New(), Username: "alice"},
	}}
	repo := NewCachedUserRepository(inner, client, time.Minute, zerolog.Nop())

	got, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, 1, inner.lookups)
}

func TestCachedUserRepository_DeleteEvictsBothKeys(t *testing.T) {
	cache, inner, mr := newCache(t)
	u := seedUser(t, cache)
	ctx := context.Background()

	_, err := cache.FindByUsername(ctx, u.Username)
	require.NoError(t, err)
	require.True(t, mr.Exists(nameKey(u.Username)))
	require.True(t, mr.Exists(idKey(u.ID)))

	require.NoError(t, cache.Delete(ctx, u.ID))

	assert.False(t, mr.Exists(nameKey(u.Username)))
	assert.False(t, mr.Exists(idKey(u.ID)))
	_, err = cache.FindByUsername(ctx, u.Username)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Empty(t, inner.users)
}
