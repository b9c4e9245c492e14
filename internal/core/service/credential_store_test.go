package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-system/internal/core/domain"
	"github.com/99minutos/identity-system/internal/infrastructure/crypto"
)

func seedUser(t *testing.T, store *CredentialStore, username, email, hash string) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	u, err := store.SaveUser(context.Background(), &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	return u
}

func TestCredentialStore_Exists(t *testing.T) {
	store := NewCredentialStore(newStubUserRepo(), &stubRoleRepo{})
	seedUser(t, store, "alice", "a@x.com", "h")

	cases := []struct {
		name     string
		username string
		email    string
		want     bool
	}{
		{"same username", "alice", "other@x.com", true},
		{"same email", "carol", "a@x.com", true},
		{"neither", "carol", "c@x.com", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.Exists(context.Background(), tc.username, tc.email)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Exists(%q, %q) = %v, want %v", tc.username, tc.email, got, tc.want)
			}
		})
	}
}

func TestCredentialStore_FindAttachesRoles(t *testing.T) {
	store := NewCredentialStore(newStubUserRepo(), &stubRoleRepo{})
	u := seedUser(t, store, "alice", "a@x.com", "h")
	if _, err := store.GrantRole(context.Background(), u, domain.RoleUser); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if _, err := store.GrantRole(context.Background(), u, domain.RoleAdmin); err != nil {
		t.Fatalf("grant: %v", err)
	}

	byName, err := store.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if got := byName.RoleNames(); len(got) != 2 || got[0] != domain.RoleUser || got[1] != domain.RoleAdmin {
		t.Fatalf("unexpected roles: %v", got)
	}

	byID, err := store.FindByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if len(byID.Roles) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(byID.Roles))
	}
}

func TestCredentialStore_GrantTwiceFails(t *testing.T) {
	store := NewCredentialStore(newStubUserRepo(), &stubRoleRepo{})
	u := seedUser(t, store, "alice", "a@x.com", "h")

	if _, err := store.GrantRole(context.Background(), u, domain.RoleAdmin); err != nil {
		t.Fatalf("first grant: %v", err)
	}
	if _, err := store.GrantRole(context.Background(), u, domain.RoleAdmin); !errors.Is(err, domain.ErrRoleAlreadyGranted) {
		t.Fatalf("expected ErrRoleAlreadyGranted, got %v", err)
	}
}

func TestCredentialStore_RevokeMissingRoleIsNoop(t *testing.T) {
	roles := &stubRoleRepo{}
	store := NewCredentialStore(newStubUserRepo(), roles)
	u := seedUser(t, store, "alice", "a@x.com", "h")
	if _, err := store.GrantRole(context.Background(), u, domain.RoleUser); err != nil {
		t.Fatalf("grant: %v", err)
	}

	if err := store.RevokeRole(context.Background(), u, "AUDITOR"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roles.roles) != 1 {
		t.Fatalf("expected USER grant to survive, got %v", roles.roles)
	}
}

func TestCredentialStore_ListPaged(t *testing.T) {
	store := NewCredentialStore(newStubUserRepo(), &stubRoleRepo{})
	for _, name := range []string{"carol", "alice", "bob"} {
		u := seedUser(t, store, name, name+"@x.com", "h")
		if _, err := store.GrantRole(context.Background(), u, domain.RoleUser); err != nil {
			t.Fatalf("grant: %v", err)
		}
	}

	page, err := store.ListPaged(context.Background(), domain.PageRequest{Page: 1, Size: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 {
		t.Fatalf("unexpected totals: %+v", page)
	}
	if len(page.Items) != 2 || page.Items[0].Username != "alice" || page.Items[1].Username != "bob" {
		t.Fatalf("unexpected page items")
	}
	for _, u := range page.Items {
		if len(u.Roles) != 1 {
			t.Fatalf("expected roles attached to %s", u.Username)
		}
	}
}

func TestPasswordAuthenticator(t *testing.T) {
	hasher := crypto.NewBcryptHasher(bcrypt.MinCost)
	store := NewCredentialStore(newStubUserRepo(), &stubRoleRepo{})
	hash, err := hasher.Encode("pw1")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	u := seedUser(t, store, "alice", "a@x.com", hash)
	if _, err := store.GrantRole(context.Background(), u, domain.RoleUser); err != nil {
		t.Fatalf("grant: %v", err)
	}
	authn := NewPasswordAuthenticator(store, hasher)

	t.Run("valid credentials", func(t *testing.T) {
		p, err := authn.Authenticate(context.Background(), "alice", "pw1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Username != "alice" || p.UserID != u.ID || !p.HasAuthority("ROLE_USER") {
			t.Fatalf("unexpected principal: %+v", p)
		}
	})

	rejected := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown user", "mallory", "pw1"},
		{"empty password", "alice", ""},
	}
	for _, tc := range rejected {
		t.Run(tc.name, func(t *testing.T) {
			_, err := authn.Authenticate(context.Background(), tc.username, tc.password)
			if !errors.Is(err, domain.ErrBadCredentials) {
				t.Fatalf("expected ErrBadCredentials, got %v", err)
			}
		})
	}
}
