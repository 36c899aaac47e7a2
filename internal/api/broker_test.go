package api

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	id := "run-1"
	ch := b.Subscribe(id)

	evt := Event{Type: "progress", Data: map[string]any{"generation": 7}}
	b.Publish(id, evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type {
			t.Fatalf("got type %s, want %s", got.Type, evt.Type)
		}
		if got.Data["generation"].(int) != 7 {
			t.Fatalf("bad payload: %+v", got.Data)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe(id, ch)
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
}

func TestBrokerIsolatesRuns(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("run-a")
	defer b.Unsubscribe("run-a", ch)

	b.Publish("run-b", Event{Type: "done"})
	select {
	case evt := <-ch:
		t.Fatalf("received event for another run: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerDropsWhenSubscriberSlow(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("run-c")
	defer b.Unsubscribe("run-c", ch)

	// publish past the buffer; must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish("run-c", Event{Type: "progress"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
