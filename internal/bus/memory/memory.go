// Package memory implements the fan-out bus in process. Suitable for a
// single-instance deployment; multi-instance deployments use the redis bus.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/linguachat/linguachat-server/internal/bus"
	"github.com/linguachat/linguachat-server/internal/chat"
	"github.com/linguachat/linguachat-server/internal/metrics"
)

const subscriberBuffer = 16

// Bus is an in-process implementation of bus.Bus.
type Bus struct {
	mu     sync.Mutex
	rooms  map[string]map[*subscription]struct{}
	closed bool
}

// New constructs an empty in-process bus.
func New() *Bus {
	return &Bus{
		rooms: make(map[string]map[*subscription]struct{}),
	}
}

var _ bus.Bus = (*Bus)(nil)

// Publish delivers msg to every subscriber of roomID. Slow consumers with
// a full buffer miss the event rather than block the publisher.
func (b *Bus) Publish(_ context.Context, roomID string, msg *chat.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errors.New("bus closed")
	}
	for sub := range b.rooms[roomID] {
		select {
		case sub.ch <- msg:
		default:
			metrics.DroppedEvents.Inc()
		}
	}
	return nil
}

// Subscribe registers a new subscription for roomID.
func (b *Bus) Subscribe(_ context.Context, roomID string) (bus.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, errors.New("bus closed")
	}

	sub := &subscription{
		bus:    b,
		roomID: roomID,
		ch:     make(chan *chat.Message, subscriberBuffer),
	}
	if b.rooms[roomID] == nil {
		b.rooms[roomID] = make(map[*subscription]struct{})
	}
	b.rooms[roomID][sub] = struct{}{}
	metrics.ActiveSubscribers.Inc()
	return sub, nil
}

// Close drops all subscriptions and rejects further use.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for roomID, subs := range b.rooms {
		for sub := range subs {
			sub.detached = true
			close(sub.ch)
			metrics.ActiveSubscribers.Dec()
		}
		delete(b.rooms, roomID)
	}
	return nil
}

// remove detaches sub and closes its channel. The channel is closed under
// the bus lock so Publish can never send on a closed channel.
func (b *Bus) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub.detached {
		return
	}
	sub.detached = true

	if subs, ok := b.rooms[sub.roomID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.rooms, sub.roomID)
		}
	}
	close(sub.ch)
	metrics.ActiveSubscribers.Dec()
}

type subscription struct {
	bus    *Bus
	roomID string
	ch     chan *chat.Message

	once sync.Once
	// detached is guarded by bus.mu.
	detached bool
}

func (s *subscription) Events() <-chan *chat.Message {
	return s.ch
}

func (s *subscription) Close() error {
	s.once.Do(func() { s.bus.remove(s) })
	return nil
}
