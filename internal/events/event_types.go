package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated  EventType = "user_created"
	EventUserUpdated  EventType = "user_updated"
	EventChirpCreated EventType = "chirp_created"
	EventChirpDeleted EventType = "chirp_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        uuid.UUID   `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   uuid.UUID   `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, actorID uuid.UUID, payload interface{}) Event {
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserPayload describes user lifecycle events.
type UserPayload struct {
	Email string `json:"email"`
}

// ChirpPayload describes chirp lifecycle events.
type ChirpPayload struct {
	ChirpID     uuid.UUID `json:"chirp_id"`
	BodyPreview string    `json:"body_preview,omitempty"`
}
