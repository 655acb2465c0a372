package controller

// Event represents a controller lifecycle event.
// Minimal and stable: name plus optional fields via key/values.
type Event struct {
	Name   string
	Fields map[string]any
}

// Event names published by the controller.
const (
	EventQueueAccepted   = "queue.accepted"
	EventQueueRemoved    = "queue.removed"
	EventQueueEdited     = "queue.edited"
	EventDispatchSent    = "dispatch.sent"
	EventDispatchSkipped = "dispatch.skipped"
	EventDispatchAborted = "dispatch.aborted"
	EventPersistFailed   = "persist.failed"
)

// EventPublisher receives events from the controller. Implementations should
// be lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
