package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-system/internal/core/domain"
	"github.com/99minutos/identity-system/internal/core/ports"
	"github.com/99minutos/identity-system/internal/pkg/metrics"
)

// AuthService implements sign-up, login, self-service updates and role
// administration. It is the only component that hashes passwords and mints
// tokens.
type AuthService struct {
	store  *CredentialStore
	hasher ports.PasswordHasher
	authn  ports.AuthenticationManager
	codec  ports.TokenCodec
	audit  ports.AuditPublisher
	logger zerolog.Logger
}

func NewAuthService(
	store *CredentialStore,
	hasher ports.PasswordHasher,
	authn ports.AuthenticationManager,
	codec ports.TokenCodec,
	audit ports.AuditPublisher,
	logger zerolog.Logger,
) *AuthService {
	if audit == nil {
		audit = discardAudit{}
	}
	return &AuthService{
		store:  store,
		hasher: hasher,
		authn:  authn,
		codec:  codec,
		audit:  audit,
		logger: logger,
	}
}

var _ ports.AuthService = (*AuthService)(nil)

// SignUp registers a user and grants it the default role. The user row is
// written first so the grant can reference its identifier.
func (s *AuthService) SignUp(ctx context.Context, username, password, email string) (*domain.User, error) {
	if username == "" || password == "" || email == "" {
		return nil, fmt.Errorf("%w: username, password and email are required", domain.ErrInvalidArgument)
	}

	exists, err := s.store.Exists(ctx, username, email)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if exists {
		metrics.SignupsTotal.WithLabelValues("conflict").Inc()
		return nil, domain.ErrUserAlreadyExists
	}

	hash, err := s.hasher.Encode(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	saved, err := s.store.SaveUser(ctx, &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Roles:        []domain.Role{},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			metrics.SignupsTotal.WithLabelValues("conflict").Inc()
		} else {
			metrics.SignupsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	role, err := s.store.GrantRole(ctx, saved, domain.DefaultRole)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Str("username", username).Msg("failed to grant default role")
		// Undo the user row so the username and email can sign up again.
		if derr := s.store.DeleteUser(context.WithoutCancel(ctx), saved.ID); derr != nil {
			s.logger.Error().Err(derr).Str("username", username).Msg("failed to roll back user after role grant error")
		}
		return nil, fmt.Errorf("grant default role: %w", err)
	}

	created := *saved
	created.Roles = []domain.Role{*role}

	metrics.SignupsTotal.WithLabelValues("created").Inc()
	s.audit.Publish(domain.NewSecurityEvent(domain.EventSignup, username, ""))
	s.logger.Info().Str("username", username).Str("user_id", created.ID.String()).Msg("user signed up")

	return &created, nil
}

// Authenticate verifies the credentials, installs the resolved principal in
// the request's security context and returns a freshly issued token.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (string, error) {
	principal, err := s.authn.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrBadCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
			s.audit.Publish(domain.NewSecurityEvent(domain.EventLoginFailed, username, ""))
			s.logger.Debug().Str("username", username).Msg("credentials rejected")
		}
		return "", err
	}

	domain.SetSecurityContext(ctx, domain.Authenticated{Principal: principal})

	token, err := s.codec.Issue(principal)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.audit.Publish(domain.NewSecurityEvent(domain.EventLoginSucceeded, username, ""))

	return token, nil
}

// Me returns the principal of the current request.
func (s *AuthService) Me(ctx context.Context) (domain.Principal, error) {
	switch sc := domain.CurrentSecurityContext(ctx).(type) {
	case domain.Authenticated:
		return sc.Principal, nil
	default:
		return domain.Principal{}, fmt.Errorf("%w: user not authenticated", domain.ErrAccessDenied)
	}
}

// UpdateSelf overwrites the email and password of the current user. The
// caller's existing token is not reissued; it keeps the old claims until it
// expires.
func (s *AuthService) UpdateSelf(ctx context.Context, email, password string) (*domain.User, error) {
	var principal domain.Principal
	switch sc := domain.CurrentSecurityContext(ctx).(type) {
	case domain.Authenticated:
		principal = sc.Principal
	default:
		return nil, fmt.Errorf("%w: cannot update user details", domain.ErrInvalidArgument)
	}
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidArgument)
	}

	user, err := s.GetUserByUsername(ctx, principal.Username)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Encode(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user.Email = email
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()

	roles := user.Roles
	saved, err := s.store.SaveUser(ctx, user)
	if err != nil {
		return nil, err
	}
	saved.Roles = roles

	s.audit.Publish(domain.NewSecurityEvent(domain.EventUserUpdated, saved.Username, ""))
	s.logger.Info().Str("username", saved.Username).Msg("user updated")

	return saved, nil
}

// AddRole grants role to username. Granting a role twice fails with
// domain.ErrRoleAlreadyGranted.
func (s *AuthService) AddRole(ctx context.Context, username, role string) error {
	if role == "" {
		return fmt.Errorf("%w: role is required", domain.ErrInvalidArgument)
	}
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if _, err := s.store.GrantRole(ctx, user, role); err != nil {
		return err
	}

	metrics.RoleChangesTotal.WithLabelValues("grant").Inc()
	s.audit.Publish(domain.NewSecurityEvent(domain.EventRoleGranted, username, role))
	s.logger.Info().Str("username", username).Str("role", role).Msg("role granted")
	return nil
}

// RemoveRole revokes role from username. Revoking a role that is not held
// succeeds without effect.
func (s *AuthService) RemoveRole(ctx context.Context, username, role string) error {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.store.RevokeRole(ctx, user, role); err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}

	metrics.RoleChangesTotal.WithLabelValues("revoke").Inc()
	s.audit.Publish(domain.NewSecurityEvent(domain.EventRoleRevoked, username, role))
	s.logger.Info().Str("username", username).Str("role", role).Msg("role revoked")
	return nil
}

func (s *AuthService) ListRoles(ctx context.Context, username string) ([]domain.Role, error) {
	return s.store.ListRoles(ctx, username)
}

func (s *AuthService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, username)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context, page domain.PageRequest) (domain.Page[*domain.User], error) {
	return s.store.ListPaged(ctx, page)
}

type discardAudit struct{}

func (discardAudit) Publish(domain.SecurityEvent) {}
