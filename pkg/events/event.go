package events

import "time"

// Codes published on the event bus. Subjects on the wire are prefixed with
// the stream name, so subscribers match on "events.<code>".
const (
	UserRegistered = "USER_REGISTERED"
	UserLogin      = "USER_LOGIN"
	UserDeleted    = "USER_DELETED"
)

// Event is what the bus carries.
type Event interface {
	// EventType returns the code, e.g. "USER_LOGIN".
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation most publishers use.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

// New builds a BaseEvent stamped with the current time.
func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
