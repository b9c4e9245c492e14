package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/99minutos/identity-system/internal/core/domain"
)

func TestAdminHandler_AddRemoveRole(t *testing.T) {
	var granted, revoked string
	stub := &stubAuthService{
		addRoleFn: func(ctx context.Context, username, role string) error {
			granted = username + ":" + role
			return nil
		},
		removeRoleFn: func(ctx context.Context, username, role string) error {
			revoked = username + ":" + role
			return nil
		},
	}
	handler := NewAdminHandler(stub, &stubAuditService{})

	c, rec := newContext(http.MethodPost, "/", "")
	c.SetParamNames("username", "role")
	c.SetParamValues("alice", "ADMIN")
	if err := handler.AddRole(c); err != nil {
		t.Fatalf("add role: %v", err)
	}
	if rec.Code != http.StatusCreated || granted != "alice:ADMIN" {
		t.Fatalf("unexpected result: %d %q", rec.Code, granted)
	}

	c, rec = newContext(http.MethodDelete, "/", "")
	c.SetParamNames("username", "role")
	c.SetParamValues("alice", "ADMIN")
	if err := handler.RemoveRole(c); err != nil {
		t.Fatalf("remove role: %v", err)
	}
	if rec.Code != http.StatusOK || revoked != "alice:ADMIN" {
		t.Fatalf("unexpected result: %d %q", rec.Code, revoked)
	}
}

func TestAdminHandler_AddRole_Conflict(t *testing.T) {
	stub := &stubAuthService{
		addRoleFn: func(ctx context.Context, username, role string) error {
			return domain.ErrRoleAlreadyGranted
		},
	}
	handler := NewAdminHandler(stub, &stubAuditService{})

	c, _ := newContext(http.MethodPost, "/", "")
	c.SetParamNames("username", "role")
	c.SetParamValues("alice", "USER")
	if err := handler.AddRole(c); !errors.Is(err, domain.ErrRoleAlreadyGranted) {
		t.Fatalf("expected ErrRoleAlreadyGranted, got %v", err)
	}
}

func TestAdminHandler_ListUsers(t *testing.T) {
	stub := &stubAuthService{
		listUsersFn: func(ctx context.Context, page domain.PageRequest) (domain.Page[*domain.User], error) {
			if page.Page != 2 || page.Size != 100 {
				t.Fatalf("expected page 2 size 100 (clamped), got %+v", page)
			}
			return domain.NewPage([]*domain.User{alice()}, page, 101), nil
		},
	}
	handler := NewAdminHandler(stub, &stubAuditService{})

	c, rec := newContext(http.MethodGet, "/security/admin/user?page=2&size=500", "")
	if err := handler.ListUsers(c); err != nil {
		t.Fatalf("list users: %v", err)
	}

	var resp userPageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.TotalElements != 101 || resp.TotalPages != 2 || len(resp.Content) != 1 {
		t.Fatalf("unexpected page: %+v", resp)
	}
	if resp.Content[0].Username != "alice" {
		t.Fatalf("unexpected content: %+v", resp.Content)
	}
}

func TestAdminHandler_ListUsers_BadQuery(t *testing.T) {
	stub := &stubAuthService{
		listUsersFn: func(ctx context.Context, page domain.PageRequest) (domain.Page[*domain.User], error) {
			t.Fatalf("should not be called")
			return domain.Page[*domain.User]{}, nil
		},
	}
	handler := NewAdminHandler(stub, &stubAuditService{})

	c, _ := newContext(http.MethodGet, "/security/admin/user?page=abc", "")
	if code := httpCode(t, handler.ListUsers(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAdminHandler_GetByUserID(t *testing.T) {
	u := alice()
	stub := &stubAuthService{
		byIDFn: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			if id != u.ID {
				return nil, domain.ErrUserNotFound
			}
			return u, nil
		},
	}
	handler := NewAdminHandler(stub, &stubAuditService{})

	c, rec := newContext(http.MethodGet, "/", "")
	c.SetParamNames("user_id")
	c.SetParamValues(u.ID.String())
	if err := handler.GetByUserID(c); err != nil {
		t.Fatalf("get by id: %v", err)
	}
	var resp userDetailResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.ID != u.ID.String() || resp.Username != "alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	c, _ = newContext(http.MethodGet, "/", "")
	c.SetParamNames("user_id")
	c.SetParamValues(uuid.NewString())
	if err := handler.GetByUserID(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	c, _ = newContext(http.MethodGet, "/", "")
	c.SetParamNames("user_id")
	c.SetParamValues("42")
	if code := httpCode(t, handler.GetByUserID(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAdminHandler_GetByUsername_NotFound(t *testing.T) {
	stub := &stubAuthService{
		byUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	handler := NewAdminHandler(stub, &stubAuditService{})

	c, _ := newContext(http.MethodGet, "/", "")
	c.SetParamNames("username")
	c.SetParamValues("ghost")
	if err := handler.GetByUsername(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAdminHandler_ListRoles(t *testing.T) {
	u := alice()
	stub := &stubAuthService{
		listRolesFn: func(ctx context.Context, username string) ([]domain.Role, error) {
			return u.Roles, nil
		},
	}
	handler := NewAdminHandler(stub, &stubAuditService{})

	c, rec := newContext(http.MethodGet, "/", "")
	c.SetParamNames("username")
	c.SetParamValues("alice")
	if err := handler.ListRoles(c); err != nil {
		t.Fatalf("list roles: %v", err)
	}
	var resp []roleResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp) != 1 || resp[0].Role != domain.RoleUser {
		t.Fatalf("unexpected roles: %+v", resp)
	}
}

func TestAdminHandler_Events(t *testing.T) {
	audit := &stubAuditService{
		recentFn: func(ctx context.Context, username string, limit int) ([]domain.SecurityEvent, error) {
			if username != "alice" || limit != 10 {
				t.Fatalf("unexpected args: %s %d", username, limit)
			}
			return []domain.SecurityEvent{
				domain.NewSecurityEvent(domain.EventRoleGranted, "alice", "ADMIN"),
			}, nil
		},
	}
	handler := NewAdminHandler(&stubAuthService{}, audit)

	c, rec := newContext(http.MethodGet, "/?limit=10", "")
	c.SetParamNames("username")
	c.SetParamValues("alice")
	if err := handler.Events(c); err != nil {
		t.Fatalf("events: %v", err)
	}
	var resp []eventResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp) != 1 || resp[0].Type != "role_granted" || resp[0].Detail != "ADMIN" {
		t.Fatalf("unexpected events: %+v", resp)
	}
}
