package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPublisherStampsEvent(t *testing.T) {
	store := NewMemory()
	p := NewPublisher(store)

	err := p.Emit(context.Background(), Event{
		Action:        ActionCredentialInvalidated,
		WalletAddress: "0xabc",
		SubjectDID:    "did:pet:1",
		Reason:        "stolen",
	})
	require.NoError(t, err)

	events := store.Events()
	require.Len(t, events, 1)
	require.NotEqual(t, uuid.Nil, events[0].ID)
	require.False(t, events[0].Timestamp.IsZero())
	require.Equal(t, "stolen", events[0].Reason)
}

func TestPublisherStoreFailurePropagates(t *testing.T) {
	store := NewMemory()
	store.FailAppend = errors.New("down")
	p := NewPublisher(store)

	err := p.Emit(context.Background(), Event{Action: ActionIdentityRegistered})
	require.Error(t, err)
}

func TestPublisherStreamIsNonBlocking(t *testing.T) {
	store := NewMemory()
	stream := make(chan Event, 1)
	p := NewPublisher(store, WithStream(stream))

	// Second emit finds the channel full; the store write must still land.
	require.NoError(t, p.Emit(context.Background(), Event{Action: ActionIdentityRegistered}))
	require.NoError(t, p.Emit(context.Background(), Event{Action: ActionIdentityRegistered}))
	require.Len(t, store.Events(), 2)
	require.Len(t, stream, 1)
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Publish(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestWorkerDrainsStream(t *testing.T) {
	sink := &recordingSink{}
	stream := make(chan Event, 4)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	worker := NewWorker(sink, stream, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	stream <- Event{Action: ActionCredentialIssued}
	stream <- Event{Action: ActionCredentialInvalidated}

	require.Eventually(t, func() bool {
		return sink.count() == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
