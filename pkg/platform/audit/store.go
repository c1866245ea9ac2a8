package audit

import "context"

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Sink delivers audit events to an external system, such as a broker topic
// consumed by the compliance pipeline.
type Sink interface {
	Publish(ctx context.Context, event Event) error
	Close()
}
