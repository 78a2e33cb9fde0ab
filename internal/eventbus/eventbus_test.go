package eventbus

import (
	"testing"
	"time"
)

func TestBusPublishSubscribe(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	b.Publish("hello")
	select {
	case e := <-sub:
		if e != "hello" {
			t.Fatalf("unexpected event %v", e)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event received")
	}
}

func TestBusUnsubscribeCloses(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	b.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Fatalf("channel not closed")
	}
}

func TestBusPublishAfterClose(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	b.Close()
	b.Publish("dropped")
	if _, ok := <-sub; ok {
		t.Fatalf("expected closed channel")
	}
}

func TestBusNonBlockingPublish(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	for i := 0; i < 100; i++ {
		b.Publish(i)
	}
	// Buffer is 16; the publisher must not have blocked.
	if len(sub) != 16 {
		t.Fatalf("expected full buffer, got %d", len(sub))
	}
}
