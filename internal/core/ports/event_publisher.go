package ports

import (
	"context"

	"dispatch/internal/core/domain/events"
)

// EventPublisher delivers domain events to the message bus. Implementations
// serialize the event and choose the destination from the event name.
// Publishing is best-effort from the domain's point of view: a failed
// publish is reported but never rolls back the state transition it follows.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}
