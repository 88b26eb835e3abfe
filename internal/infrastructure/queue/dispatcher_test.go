package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/edulearn/lms/internal/core/domain"
)

type recordingService struct {
	mu     sync.Mutex
	events []domain.AuthEvent
	done   chan struct{}
	want   int
	err    error
}

func (s *recordingService) Process(_ context.Context, event domain.AuthEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if len(s.events) == s.want {
		close(s.done)
	}
	return s.err
}

func TestDispatcher_PreservesPerRecipientOrder(t *testing.T) {
	svc := &recordingService{done: make(chan struct{}), want: 3}
	d := NewDispatcher(4, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	types := []domain.AuthEventType{
		domain.EventUserRegistered,
		domain.EventPasswordResetRequested,
		domain.EventPasswordChanged,
	}
	for _, typ := range types {
		d.Enqueue(domain.AuthEvent{Type: typ, Email: "Ana@Example.com"})
	}

	select {
	case <-svc.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events")
	}
	cancel()
	d.Wait()

	for i, typ := range types {
		if svc.events[i].Type != typ {
			t.Fatalf("event %d: expected %s, got %s", i, typ, svc.events[i].Type)
		}
	}
}

func TestDispatcher_ServiceErrorDoesNotStopWorker(t *testing.T) {
	svc := &recordingService{done: make(chan struct{}), want: 2, err: errors.New("broker down")}
	d := NewDispatcher(1, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(domain.AuthEvent{Type: domain.EventUserRegistered, Email: "a@example.com"})
	d.Enqueue(domain.AuthEvent{Type: domain.EventUserRegistered, Email: "b@example.com"})

	select {
	case <-svc.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stopped after a failed event")
	}
}

func TestShardIndex_CaseInsensitive(t *testing.T) {
	d := NewDispatcher(8, nil, zerolog.Nop())
	if d.shardIndex("User@Example.com") != d.shardIndex("user@example.com") {
		t.Fatal("expected the same shard regardless of email case")
	}
	if got := len(NewDispatcher(0, nil, zerolog.Nop()).workers); got != defaultWorkers {
		t.Fatal("expected default worker count")
	}
}
