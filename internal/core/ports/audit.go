package ports

import (
	"context"

	"github.com/99minutos/identity-system/internal/core/domain"
)

// AuditPublisher hands security events off for asynchronous persistence.
// Publish must not block the caller.
type AuditPublisher interface {
	Publish(event domain.SecurityEvent)
}

// AuditRepository persists the account audit trail.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.SecurityEvent) error
	// ListByUsername returns the most recent events of username, newest first.
	ListByUsername(ctx context.Context, username string, limit int) ([]domain.SecurityEvent, error)
}

// AuditService processes a single security event.
type AuditService interface {
	Process(ctx context.Context, event domain.SecurityEvent) error
	Recent(ctx context.Context, username string, limit int) ([]domain.SecurityEvent, error)
}
