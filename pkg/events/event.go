package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CONTENT_ADDED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
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

// Content store lifecycle events, published after a mutation is applied.
const (
	ContentAdded    = "CONTENT_ADDED"
	ContentReplaced = "CONTENT_REPLACED"
	ContentDeleted  = "CONTENT_DELETED"
)

func NewContentEvent(eventType string, recordIds []int64) Event {
	ids := make([]interface{}, len(recordIds))
	for i, id := range recordIds {
		ids[i] = id
	}
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"record_ids": ids,
		},
		OccurredAt: time.Now(),
	}
}
