package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Publisher routes audit events. Persistence to the store is synchronous and
// fail-closed: compliance-category events must land before the caller
// proceeds. Sink delivery is best-effort; a broker outage never blocks a
// check-in.
type Publisher struct {
	store  Store
	sink   Sink
	logger *slog.Logger
	buffer chan Event
}

type PublisherOption func(*Publisher)

func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logger }
}

// WithSink attaches an external delivery sink.
func WithSink(sink Sink) PublisherOption {
	return func(p *Publisher) { p.sink = sink }
}

// WithAsyncBuffer buffers sink delivery through a channel drained by a
// background goroutine, decoupling broker latency from request handling.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) { p.buffer = make(chan Event, size) }
}

func NewPublisher(store Store, opts ...PublisherOption) (*Publisher, error) {
	if store == nil {
		return nil, fmt.Errorf("audit store is required")
	}
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Emit persists the event and forwards it to the sink. Category is derived
// from the action when unset; a failed store write fails the caller.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Action == "" {
		return fmt.Errorf("audit event requires an action")
	}
	if event.Category == "" {
		event.Category = CategoryFor(event.Action)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := p.store.Append(ctx, event); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit persistence failed",
				"action", event.Action,
				"user_id", event.UserID,
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}

	p.forward(ctx, event)
	return nil
}

func (p *Publisher) forward(ctx context.Context, event Event) {
	if p.sink == nil {
		return
	}
	if p.buffer != nil {
		select {
		case p.buffer <- event:
		default:
			if p.logger != nil {
				p.logger.WarnContext(ctx, "audit sink buffer full, dropping event",
					"action", event.Action)
			}
		}
		return
	}
	if err := p.sink.Publish(ctx, event); err != nil && p.logger != nil {
		p.logger.WarnContext(ctx, "audit sink delivery failed",
			"action", event.Action, "error", err)
	}
}

// Run drains the async buffer until the context is cancelled. Only needed
// when WithAsyncBuffer is configured.
func (p *Publisher) Run(ctx context.Context) error {
	if p.buffer == nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-p.buffer:
			if err := p.sink.Publish(ctx, event); err != nil && p.logger != nil {
				p.logger.WarnContext(ctx, "audit sink delivery failed",
					"action", event.Action, "error", err)
			}
		}
	}
}
