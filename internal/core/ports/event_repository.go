package ports

import (
	"context"

	"github.com/edulearn/lms/internal/core/domain"
)

// AuthEventRepository persists auth events to the audit trail.
type AuthEventRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}

// EventPublisher hands auth events to the notification pipeline.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.AuthEvent) error
}

// EventService processes queued auth events.
type EventService interface {
	Process(ctx context.Context, event domain.AuthEvent) error
}
