package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/identity-system/internal/core/domain"
	"github.com/99minutos/identity-system/internal/core/ports"
)

const eventsCollection = "security_events"

// EventRepository implements ports.AuditRepository using MongoDB.
type EventRepository struct {
	db *mongo.Database
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) ports.AuditRepository {
	return &EventRepository{db: db}
}

type mongoEvent struct {
	ID          string    `bson:"_id"`
	Type        string    `bson:"type"`
	Username    string    `bson:"username"`
	Detail      string    `bson:"detail,omitempty"`
	OccurredAt  time.Time `bson:"occurred_at"`
	ProcessedAt time.Time `bson:"processed_at"`
}

// InsertEvent persists a security event to the audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.SecurityEvent) error {
	id := event.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	doc := mongoEvent{
		ID:          id.String(),
		Type:        string(event.Type),
		Username:    event.Username,
		Detail:      event.Detail,
		OccurredAt:  event.OccurredAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}

	_, err := r.db.Collection(eventsCollection).InsertOne(ctx, doc)
	return err
}

// ListByUsername returns the latest events of username, newest first.
func (r *EventRepository) ListByUsername(ctx context.Context, username string, limit int) ([]domain.SecurityEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.db.Collection(eventsCollection).Find(ctx, bson.M{"username": username}, opts)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoEvent
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	events := make([]domain.SecurityEvent, 0, len(docs))
	for _, d := range docs {
		e, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (m mongoEvent) toDomain() (domain.SecurityEvent, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return domain.SecurityEvent{}, fmt.Errorf("decode event id %q: %w", m.ID, err)
	}
	return domain.SecurityEvent{
		ID:         id,
		Type:       domain.SecurityEventType(m.Type),
		Username:   m.Username,
		Detail:     m.Detail,
		OccurredAt: m.OccurredAt.UTC(),
	}, nil
}
