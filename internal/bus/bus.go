// Package bus defines the realtime fan-out channel between the ingest
// service and live subscribers. The bus holds no durable state: a
// subscriber not connected at publish time never receives that event.
// Historical replay is the store's job.
package bus

import (
	"context"

	"github.com/linguachat/linguachat-server/internal/chat"
)

// Subscription is a live feed of one room's events. Events are delivered
// in per-room publish order until Close.
type Subscription interface {
	// Events returns the feed channel. It is closed after Close or when
	// the underlying connection drops; consumers must then re-subscribe
	// and re-fetch history to cover the gap.
	Events() <-chan *chat.Message

	// Close deregisters the subscription and releases its resources.
	// Idempotent.
	Close() error
}

// Bus is a best-effort, at-most-once broadcast channel keyed by room.
type Bus interface {
	// Publish broadcasts msg to all currently-active subscribers of roomID.
	Publish(ctx context.Context, roomID string, msg *chat.Message) error

	// Subscribe registers interest in a room's events.
	Subscribe(ctx context.Context, roomID string) (Subscription, error)

	// Close shuts the bus down and releases its resources.
	Close() error
}
