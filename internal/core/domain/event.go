package domain

import (
	"time"

	"github.com/google/uuid"
)

// SecurityEventType names an auditable account action.
type SecurityEventType string

const (
	EventSignup         SecurityEventType = "signup"
	EventLoginSucceeded SecurityEventType = "login_succeeded"
	EventLoginFailed    SecurityEventType = "login_failed"
	EventUserUpdated    SecurityEventType = "user_updated"
	EventRoleGranted    SecurityEventType = "role_granted"
	EventRoleRevoked    SecurityEventType = "role_revoked"
)

var knownEventTypes = map[SecurityEventType]struct{}{
	EventSignup:         {},
	EventLoginSucceeded: {},
	EventLoginFailed:    {},
	EventUserUpdated:    {},
	EventRoleGranted:    {},
	EventRoleRevoked:    {},
}

// Valid reports whether t is one of the known event types.
func (t SecurityEventType) Valid() bool {
	_, ok := knownEventTypes[t]
	return ok
}

// SecurityEvent is an entry of the account audit trail.
type SecurityEvent struct {
	ID         uuid.UUID         `json:"id"`
	Type       SecurityEventType `json:"type"`
	Username   string            `json:"username"`
	Detail     string            `json:"detail,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewSecurityEvent stamps an event of type t for username.
func NewSecurityEvent(t SecurityEventType, username, detail string) SecurityEvent {
	return SecurityEvent{
		ID:         uuid.New(),
		Type:       t,
		Username:   username,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}
}
