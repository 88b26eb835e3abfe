package domain

import "time"

// AuthEventType names the auth lifecycle events emitted for downstream
// notification delivery.
type AuthEventType string

const (
	EventUserRegistered         AuthEventType = "user_registered"
	EventPasswordResetRequested AuthEventType = "password_reset_requested"
	EventPasswordChanged        AuthEventType = "password_changed"
)

// AuthEvent is published after an auth action commits.
type AuthEvent struct {
	Type       AuthEventType     `json:"type"`
	UserID     string            `json:"userId"`
	Email      string            `json:"email"`
	OccurredAt time.Time         `json:"occurredAt"`
	Data       map[string]string `json:"data,omitempty"`
}
