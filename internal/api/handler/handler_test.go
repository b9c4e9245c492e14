package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-system/internal/core/domain"
)

type stubAuthService struct {
	signUpFn       func(ctx context.Context, username, password, email string) (*domain.User, error)
	authenticateFn func(ctx context.Context, username, password string) (string, error)
	meFn           func(ctx context.Context) (domain.Principal, error)
	updateSelfFn   func(ctx context.Context, email, password string) (*domain.User, error)
	addRoleFn      func(ctx context.Context, username, role string) error
	removeRoleFn   func(ctx context.Context, username, role string) error
	listRolesFn    func(ctx context.Context, username string) ([]domain.Role, error)
	byUsernameFn   func(ctx context.Context, username string) (*domain.User, error)
	byIDFn         func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	listUsersFn    func(ctx context.Context, page domain.PageRequest) (domain.Page[*domain.User], error)
}

func (s *stubAuthService) SignUp(ctx context.Context, username, password, email string) (*domain.User, error) {
	return s.signUpFn(ctx, username, password, email)
}

func (s *stubAuthService) Authenticate(ctx context.Context, username, password string) (string, error) {
	return s.authenticateFn(ctx, username, password)
}

func (s *stubAuthService) Me(ctx context.Context) (domain.Principal, error) {
	return s.meFn(ctx)
}

func (s *stubAuthService) UpdateSelf(ctx context.Context, email, password string) (*domain.User, error) {
	return s.updateSelfFn(ctx, email, password)
}

func (s *stubAuthService) AddRole(ctx context.Context, username, role string) error {
	return s.addRoleFn(ctx, username, role)
}

func (s *stubAuthService) RemoveRole(ctx context.Context, username, role string) error {
	return s.removeRoleFn(ctx, username, role)
}

func (s *stubAuthService) ListRoles(ctx context.Context, username string) ([]domain.Role, error) {
	return s.listRolesFn(ctx, username)
}

func (s *stubAuthService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.byUsernameFn(ctx, username)
}

func (s *stubAuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.byIDFn(ctx, id)
}

func (s *stubAuthService) ListUsers(ctx context.Context, page domain.PageRequest) (domain.Page[*domain.User], error) {
	return s.listUsersFn(ctx, page)
}

type stubAuditService struct {
	recentFn func(ctx context.Context, username string, limit int) ([]domain.SecurityEvent, error)
}

func (s *stubAuditService) Process(context.Context, domain.SecurityEvent) error { return nil }

func (s *stubAuditService) Recent(ctx context.Context, username string, limit int) ([]domain.SecurityEvent, error) {
	return s.recentFn(ctx, username, limit)
}

// newContext builds an echo context for method/target with an optional JSON
// body and the request validator installed.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func alice() *domain.User {
	u := &domain.User{ID: uuid.New(), Username: "alice", Email: "a@x.com"}
	u.Roles = []domain.Role{*domain.NewRole(u, domain.RoleUser)}
	return u
}
