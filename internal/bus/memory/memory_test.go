package memory

import (
	"context"
	"testing"
	"time"

	"github.com/linguachat/linguachat-server/internal/chat"
)

func receive(t *testing.T, events <-chan *chat.Message) *chat.Message {
	t.Helper()
	select {
	case msg, ok := <-events:
		if !ok {
			t.Fatal("events channel closed unexpectedly")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return nil
}

func TestPublish_DeliversToRoomSubscribers(t *testing.T) {
	b := New()
	defer b.Close()
	ctx := context.Background()

	sub1, err := b.Subscribe(ctx, "alice_bob")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub1.Close()

	sub2, err := b.Subscribe(ctx, "alice_bob")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub2.Close()

	other, err := b.Subscribe(ctx, "bob_carol")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer other.Close()

	msg := &chat.Message{ID: 1, RoomID: "alice_bob", Content: "hi"}
	if err := b.Publish(ctx, "alice_bob", msg); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if got := receive(t, sub1.Events()); got.ID != 1 {
		t.Fatalf("sub1 got id %d", got.ID)
	}
	if got := receive(t, sub2.Events()); got.ID != 1 {
		t.Fatalf("sub2 got id %d", got.ID)
	}

	select {
	case msg := <-other.Events():
		t.Fatalf("subscriber of a different room received %+v", msg)
	default:
	}
}

func TestPublish_PreservesOrder(t *testing.T) {
	b := New()
	defer b.Close()
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, "alice_bob")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	for i := int64(1); i <= 5; i++ {
		if err := b.Publish(ctx, "alice_bob", &chat.Message{ID: i, RoomID: "alice_bob"}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	for want := int64(1); want <= 5; want++ {
		if got := receive(t, sub.Events()); got.ID != want {
			t.Fatalf("expected id %d, got %d", want, got.ID)
		}
	}
}

func TestPublish_DropsWhenBufferFull(t *testing.T) {
	b := New()
	defer b.Close()
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, "alice_bob")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	// Fill the buffer and then some; the publisher must never block.
	for i := int64(1); i <= 100; i++ {
		if err := b.Publish(ctx, "alice_bob", &chat.Message{ID: i, RoomID: "alice_bob"}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	// The first buffered events survive in order; the rest were dropped.
	if got := receive(t, sub.Events()); got.ID != 1 {
		t.Fatalf("expected oldest buffered event first, got id %d", got.ID)
	}
}

func TestSubscriptionClose_Idempotent(t *testing.T) {
	b := New()
	defer b.Close()

	sub, err := b.Subscribe(context.Background(), "alice_bob")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := sub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	// Closed subscription no longer receives; its channel is closed.
	if err := b.Publish(context.Background(), "alice_bob", &chat.Message{ID: 1}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, ok := <-sub.Events(); ok {
		t.Fatal("expected closed events channel")
	}
}

func TestBusClose(t *testing.T) {
	b := New()
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, "alice_bob")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	if _, ok := <-sub.Events(); ok {
		t.Fatal("expected events channel closed after bus close")
	}
	if err := b.Publish(ctx, "alice_bob", &chat.Message{ID: 1}); err == nil {
		t.Fatal("expected publish on closed bus to fail")
	}
	if _, err := b.Subscribe(ctx, "alice_bob"); err == nil {
		t.Fatal("expected subscribe on closed bus to fail")
	}

	// Closing a subscription after the bus shut down is still safe.
	if err := sub.Close(); err != nil {
		t.Fatalf("subscription close after bus close: %v", err)
	}
}
