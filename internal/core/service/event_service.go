package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edulearn/lms/internal/core/domain"
	"github.com/edulearn/lms/internal/core/ports"
)

type eventService struct {
	audit     ports.AuthEventRepository
	publisher ports.EventPublisher
	log       zerolog.Logger
}

// NewEventService returns an EventService that records every auth event in
// the audit trail and forwards it to the notification publisher.
func NewEventService(audit ports.AuthEventRepository, publisher ports.EventPublisher, log zerolog.Logger) ports.EventService {
	return &eventService{
		audit:     audit,
		publisher: publisher,
		log:       log,
	}
}

// Process publishes a single auth event. Audit failures are logged and do not
// block delivery.
func (s *eventService) Process(ctx context.Context, event domain.AuthEvent) error {
	if event.Type == "" || event.Email == "" {
		return fmt.Errorf("process event: missing type or recipient")
	}

	if s.audit != nil {
		if err := s.audit.InsertEvent(ctx, &event); err != nil {
			s.log.Warn().Err(err).Str("type", string(event.Type)).Msg("failed to insert audit event")
		}
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("process event: publish %s: %w", event.Type, err)
	}

	s.log.Info().
		Str("type", string(event.Type)).
		Str("user_id", event.UserID).
		Msg("event published")

	return nil
}
