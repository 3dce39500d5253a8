package audit

import (
	"context"
	"log/slog"
)

// Sink publishes an audit event to a downstream system (Kafka in
// production). Implementations may fail transiently; the worker logs and
// keeps draining, the postgres store already holds the durable copy.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker drains the publisher's stream channel into a sink.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Publish(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit stream publish failed",
					"action", event.Action,
					"event_id", event.ID,
					"error", err.Error(),
				)
			}
		}
	}
}
