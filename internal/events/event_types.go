package events

import "time"

// EventType enumerates user-lifecycle events.
type EventType string

const (
	EventUserCreated   EventType = "user.created"
	EventUserUpdated   EventType = "user.updated"
	EventUserDeleted   EventType = "user.deleted"
	EventUsersImported EventType = "users.imported"
)

// Event describes something that happened to the user table.
type Event struct {
	Type       EventType
	UserID     string
	Payload    map[string]any
	OccurredAt time.Time
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType EventType, userID string, payload map[string]any) Event {
	return Event{
		Type:       eventType,
		UserID:     userID,
		Payload:    payload,
		OccurredAt: time.Now(),
	}
}
