package mail

import (
	"context"
	"sync"
	"testing"
	"time"
)

type countingSender struct {
	mu   sync.Mutex
	got  []Message
	slow time.Duration
}

func (s *countingSender) Send(_ context.Context, msg Message) error {
	if s.slow > 0 {
		time.Sleep(s.slow)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, msg)
	return nil
}

func (s *countingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func TestDispatcherDeliversAsync(t *testing.T) {
	sender := &countingSender{}
	d := NewDispatcher(sender)

	for i := 0; i < 5; i++ {
		if err := d.Send(context.Background(), Message{To: "a@x.com"}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	d.Close()

	if got := sender.count(); got != 5 {
		t.Errorf("delivered %d messages, want 5", got)
	}
}

func TestDispatcherSendNeverBlocks(t *testing.T) {
	// A sender slow enough that the queue fills while the worker is busy.
	sender := &countingSender{slow: 50 * time.Millisecond}
	d := NewDispatcher(sender)
	defer d.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < defaultQueueSize*2; i++ {
			_ = d.Send(context.Background(), Message{To: "a@x.com"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked on a full queue")
	}
}

func TestDispatcherCloseDrainsQueue(t *testing.T) {
	sender := &countingSender{slow: time.Millisecond}
	d := NewDispatcher(sender)

	const n = 10
	for i := 0; i < n; i++ {
		_ = d.Send(context.Background(), Message{To: "a@x.com"})
	}
	d.Close()

	if got := sender.count(); got != n {
		t.Errorf("delivered %d messages after Close, want %d", got, n)
	}
}

func TestDispatcherSendAfterClose(t *testing.T) {
	sender := &countingSender{}
	d := NewDispatcher(sender)
	d.Close()

	if err := d.Send(context.Background(), Message{To: "a@x.com"}); err != nil {
		t.Fatalf("Send after Close returned %v, want nil", err)
	}
}
