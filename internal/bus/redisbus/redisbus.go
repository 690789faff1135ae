// Package redisbus implements the fan-out bus on Redis pub/sub, letting
// several server instances share one live feed. Redis guarantees per-channel
// delivery order, which maps onto the per-room FIFO contract.
package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/linguachat/linguachat-server/internal/bus"
	"github.com/linguachat/linguachat-server/internal/chat"
	"github.com/linguachat/linguachat-server/internal/metrics"
)

const subscriberBuffer = 16

// Bus is a Redis-backed implementation of bus.Bus.
type Bus struct {
	client *redis.Client
	log    *zerolog.Logger
}

// New connects to Redis using a URL (redis://host:port/db) and verifies the
// connection before returning.
func New(ctx context.Context, redisURL string, logger *zerolog.Logger) (*Bus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return &Bus{client: client, log: logger}, nil
}

var _ bus.Bus = (*Bus)(nil)

// roomChannel returns the pub/sub channel name for a room.
func roomChannel(roomID string) string {
	return "room:" + roomID
}

// Publish broadcasts msg on the room's channel as JSON.
func (b *Bus) Publish(ctx context.Context, roomID string, msg *chat.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := b.client.Publish(ctx, roomChannel(roomID), data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe opens a Redis subscription for the room and decodes incoming
// payloads onto the feed channel.
func (b *Bus) Subscribe(ctx context.Context, roomID string) (bus.Subscription, error) {
	ps := b.client.Subscribe(ctx, roomChannel(roomID))

	// Force the subscription to be established so publishes after this
	// call are never missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	sub := &subscription{
		ps: ps,
		ch: make(chan *chat.Message, subscriberBuffer),
	}
	metrics.ActiveSubscribers.Inc()

	go func() {
		defer close(sub.ch)
		for payload := range ps.Channel() {
			var msg chat.Message
			if err := json.Unmarshal([]byte(payload.Payload), &msg); err != nil {
				b.log.Warn().Err(err).Str("channel", payload.Channel).Msg("drop undecodable bus event")
				continue
			}
			select {
			case sub.ch <- &msg:
			default:
				metrics.DroppedEvents.Inc()
			}
		}
	}()

	return sub, nil
}

// Close closes the underlying Redis client.
func (b *Bus) Close() error {
	return b.client.Close()
}

type subscription struct {
	ps   *redis.PubSub
	ch   chan *chat.Message
	once sync.Once
	err  error
}

func (s *subscription) Events() <-chan *chat.Message {
	return s.ch
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.err = s.ps.Close()
		metrics.ActiveSubscribers.Dec()
	})
	return s.err
}
