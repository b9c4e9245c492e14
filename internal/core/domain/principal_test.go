package domain

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrincipal_DerivesAuthorities(t *testing.T) {
	p := NewPrincipal(uuid.New(), "alice", "hash", "a@x.com", []string{RoleUser, RoleAdmin})

	assert.Equal(t, []string{"ROLE_USER", "ROLE_ADMIN"}, p.Authorities)
	assert.True(t, p.HasAuthority("ROLE_ADMIN"))
	assert.True(t, p.HasRole(RoleUser))
	assert.False(t, p.HasRole("AUDITOR"))
}

func TestNewPrincipal_CopiesRoles(t *testing.T) {
	roles := []string{RoleUser}
	p := NewPrincipal(uuid.New(), "alice", "hash", "a@x.com", roles)
	roles[0] = RoleAdmin

	assert.Equal(t, []string{RoleUser}, p.Roles)
}

func TestPrincipalFromUser(t *testing.T) {
	u := &User{ID: uuid.New(), Username: "bob", Email: "b@x.com", PasswordHash: "h"}
	u.Roles = []Role{*NewRole(u, RoleUser)}

	p := PrincipalFromUser(u)

	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, "bob", p.Username)
	assert.Equal(t, "h", p.PasswordHash)
	assert.Equal(t, []string{"ROLE_USER"}, p.Authorities)
}

func TestSecurityContext_AnonymousWithoutSlot(t *testing.T) {
	ctx := context.Background()

	_, ok := CurrentSecurityContext(ctx).(Anonymous)
	assert.True(t, ok)
	assert.False(t, SetSecurityContext(ctx, Authenticated{}))

	_, found := CurrentPrincipal(ctx)
	assert.False(t, found)
}

func TestSecurityContext_SetAndRead(t *testing.T) {
	ctx := WithSecurityContext(context.Background())
	_, ok := CurrentSecurityContext(ctx).(Anonymous)
	require.True(t, ok)

	p := NewPrincipal(uuid.New(), "alice", "h", "a@x.com", []string{RoleUser})
	require.True(t, SetSecurityContext(ctx, Authenticated{Principal: p}))

	got, found := CurrentPrincipal(ctx)
	require.True(t, found)
	assert.Equal(t, "alice", got.Username)

	require.True(t, SetSecurityContext(ctx, nil))
	_, found = CurrentPrincipal(ctx)
	assert.False(t, found)
}

func TestSecurityContext_IsolatedPerRequest(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx := WithSecurityContext(context.Background())
			name := uuid.NewString()
			SetSecurityContext(ctx, Authenticated{Principal: NewPrincipal(uuid.New(), name, "", "", nil)})
			got, ok := CurrentPrincipal(ctx)
			assert.True(t, ok)
			assert.Equal(t, name, got.Username)
		}(i)
	}
	wg.Wait()
}

func TestPageRequest_Normalize(t *testing.T) {
	req := PageRequest{Page: 0, Size: 500}.Normalize()
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, MaxPageSize, req.Size)
	assert.Equal(t, int64(0), req.Offset())

	req = PageRequest{Page: 3, Size: 10}.Normalize()
	assert.Equal(t, int64(20), req.Offset())

	page := NewPage([]string{"a"}, req, 21)
	assert.Equal(t, 3, page.TotalPages)
}

func TestSecurityEventType_Valid(t *testing.T) {
	assert.True(t, EventRoleGranted.Valid())
	assert.False(t, SecurityEventType("password_reset").Valid())
}
