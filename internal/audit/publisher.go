package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Publisher stamps and appends audit events. It writes through the store
// synchronously so callers inside a transaction scope get atomicity with
// their other writes, and optionally fans events out to a channel consumed
// by the streaming worker.
type Publisher struct {
	store  Store
	stream chan<- Event
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithStream attaches a channel drained by the streaming worker. Sends are
// non-blocking; a full channel drops the stream copy, never the store write.
func WithStream(stream chan<- Event) Option {
	return func(p *Publisher) {
		p.stream = stream
	}
}

// NewPublisher creates a publisher over the given sink.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit records one event. The store write is the critical path: if it fails
// the calling operation must fail with it.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.stream != nil {
		select {
		case p.stream <- event:
		default:
		}
	}
	return nil
}
