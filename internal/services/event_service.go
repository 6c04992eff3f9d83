package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/tasktrack-be/internal/apperror"
	"github.com/isdelr/tasktrack-be/internal/models"
	"github.com/isdelr/tasktrack-be/internal/store"
	"github.com/isdelr/tasktrack-be/internal/websocket"
	"github.com/rs/zerolog"
)

const (
	DefaultActivityLimit = 20
	MaxActivityLimit     = 100
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	Record(ctx context.Context, e models.Event)
	Recent(ctx context.Context, userID string, limit int) ([]models.Event, error)
}

// Publisher pushes a message to a user's live connections.
type Publisher interface {
	Publish(userID string, msg websocket.Message)
}

// EventService keeps the per-user activity log.
type EventService struct {
	events    store.Events
	publisher Publisher
	now       func() time.Time
}

// NewEventService creates a new EventService. publisher may be nil.
func NewEventService(events store.Events, publisher Publisher) *EventService {
	return &EventService{events: events, publisher: publisher, now: time.Now}
}

// Record stores e and pushes it to the owner's live feed. The activity log is
// secondary to the write that caused it, so failures are logged and dropped.
func (s *EventService) Record(ctx context.Context, e models.Event) {
	e.ID = uuid.NewString()
	e.CreatedAt = s.now().UTC()

	if err := s.events.CreateEvent(ctx, &e); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("type", e.Type).Msg("Failed to record event")
		return
	}
	if s.publisher != nil {
		s.publisher.Publish(e.UserID, websocket.Message{Action: websocket.ActionActivity, Payload: e})
	}
}

// Recent returns the user's latest events. A non-positive limit selects the
// default; larger limits are capped.
func (s *EventService) Recent(ctx context.Context, userID string, limit int) ([]models.Event, error) {
	switch {
	case limit <= 0:
		limit = DefaultActivityLimit
	case limit > MaxActivityLimit:
		limit = MaxActivityLimit
	}
	events, err := s.events.ListEvents(ctx, userID, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return events, nil
}
