package api

import (
	"os"
	"testing"
	"time"
)

// Requires a reachable REDIS_URL; skipped otherwise.
func TestRedisBrokerSubscribeLifecycle(t *testing.T) {
	if os.Getenv("REDIS_URL") == "" {
		t.Skip("REDIS_URL not set")
	}
	b, err := NewRedisBroker()
	if err != nil {
		t.Fatalf("NewRedisBroker: %v", err)
	}
	id := "run-redis-test"
	ch := b.Subscribe(id)

	b.Publish(id, Event{Type: "progress", Data: map[string]any{"generation": 1.0}})
	select {
	case evt := <-ch:
		if evt.Type != "progress" {
			t.Fatalf("got %+v", evt)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	b.Unsubscribe(id, ch)
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected channel to close after unsubscribe")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after unsubscribe")
	}
	// a publish after unsubscribe must not panic the reader
	b.Publish(id, Event{Type: "progress"})
	time.Sleep(100 * time.Millisecond)
}
