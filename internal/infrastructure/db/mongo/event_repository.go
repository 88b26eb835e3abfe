package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/edulearn/lms/internal/core/domain"
	"github.com/edulearn/lms/internal/core/ports"
)

const authEventsCollection = "auth_events"

// EventRepository implements ports.AuthEventRepository using MongoDB.
type EventRepository struct {
	coll *mongo.Collection
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) ports.AuthEventRepository {
	return &EventRepository{coll: db.Collection(authEventsCollection)}
}

// InsertEvent persists an auth event to the audit collection. Event payloads
// may carry reset links, so only the keys of Data are recorded.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	keys := make([]string, 0, len(event.Data))
	for k := range event.Data {
		keys = append(keys, k)
	}

	doc := bson.M{
		"type":        string(event.Type),
		"user_id":     event.UserID,
		"email":       event.Email,
		"occurred_at": event.OccurredAt.UTC(),
		"data_keys":   keys,
		"recorded_at": time.Now().UTC(),
	}

	_, err := r.coll.InsertOne(ctx, doc)
	return err
}
