package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-system/internal/core/domain"
	"github.com/99minutos/identity-system/internal/core/ports"
	"github.com/99minutos/identity-system/internal/pkg/metrics"
)

const maxRecentEvents = 100

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService implementation.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process validates and persists a single security event.
func (s *auditService) Process(ctx context.Context, event domain.SecurityEvent) error {
	start := time.Now()

	if !event.Type.Valid() || event.Username == "" {
		metrics.AuditEventsErrorsTotal.WithLabelValues("invalid_event").Inc()
		return fmt.Errorf("process audit event: %w: type=%q username=%q", domain.ErrInvalidArgument, event.Type, event.Username)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		metrics.AuditEventsErrorsTotal.WithLabelValues("insert_failed").Inc()
		return fmt.Errorf("process audit event: insert: %w", err)
	}

	metrics.AuditEventsProcessedTotal.WithLabelValues(string(event.Type)).Inc()
	metrics.AuditProcessingDuration.WithLabelValues(string(event.Type)).Observe(time.Since(start).Seconds())

	s.log.Debug().
		Str("username", event.Username).
		Str("type", string(event.Type)).
		Msg("audit event recorded")

	return nil
}

// Recent returns up to limit of the latest events recorded for username.
func (s *auditService) Recent(ctx context.Context, username string, limit int) ([]domain.SecurityEvent, error) {
	if limit <= 0 || limit > maxRecentEvents {
		limit = maxRecentEvents
	}
	events, err := s.repo.ListByUsername(ctx, username, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}
