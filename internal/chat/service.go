package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/linguachat/linguachat-server/internal/metrics"
)

// MessageStore is the persistence surface the ingest service needs.
type MessageStore interface {
	// AppendMessage atomically persists msg, assigning ID and CreatedAt.
	AppendMessage(ctx context.Context, msg *Message) error
	// ListMessages returns the room history ascending by (created_at, id).
	// limit <= 0 means the full history.
	ListMessages(ctx context.Context, roomID string, limit int) ([]*Message, error)
}

// Publisher fans a persisted message out to live subscribers of its room.
type Publisher interface {
	Publish(ctx context.Context, roomID string, msg *Message) error
}

// Service validates and ingests messages: append to the store first, then
// publish the persisted record to the bus. The order is a hard invariant;
// a subscriber must never see a message that a concurrent history fetch
// cannot.
type Service struct {
	store         MessageStore
	bus           Publisher
	log           *zerolog.Logger
	allowSelfChat bool
}

// Option configures a Service.
type Option func(*Service)

// WithSelfChat permits rooms where both participants are the same user.
func WithSelfChat() Option {
	return func(s *Service) { s.allowSelfChat = true }
}

// NewService creates the ingest service.
func NewService(store MessageStore, bus Publisher, logger *zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		bus:   bus,
		log:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveRoom derives the canonical room id for two participants,
// honouring the self-chat setting.
func (s *Service) ResolveRoom(a, b string) (string, error) {
	if s.allowSelfChat {
		return RoomIDAllowSelf(a, b)
	}
	return RoomID(a, b)
}

// Submit validates draft, persists it and publishes the persisted record.
// A publish failure is logged and counted but does not fail the submission:
// durability is already achieved and the gap closes on the next history
// fetch.
func (s *Service) Submit(ctx context.Context, draft Draft) (*Message, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	roomID, err := s.ResolveRoom(draft.SenderID, draft.RecipientID)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		RoomID:      roomID,
		SenderID:    draft.SenderID,
		RecipientID: draft.RecipientID,
		Kind:        draft.Kind,
		Content:     draft.Content,
		AudioRef:    draft.AudioRef,
	}

	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	metrics.MessagesIngested.WithLabelValues(string(msg.Kind)).Inc()

	if err := s.bus.Publish(ctx, roomID, msg); err != nil {
		metrics.PublishFailures.Inc()
		s.log.Warn().Err(err).
			Str("room_id", roomID).
			Int64("message_id", msg.ID).
			Msg("publish after append failed, message remains durable")
	}

	return msg, nil
}

// History returns the full ordered history of a room.
func (s *Service) History(ctx context.Context, roomID string) ([]*Message, error) {
	if _, _, err := ParseRoomID(roomID); err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, roomID, 0)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

func validateDraft(draft Draft) error {
	if draft.SenderID == "" {
		return fmt.Errorf("%w: sender_id", ErrMissingField)
	}
	if draft.RecipientID == "" {
		return fmt.Errorf("%w: recipient_id", ErrMissingField)
	}
	if !draft.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedKind, draft.Kind)
	}
	switch draft.Kind {
	case KindText:
		if draft.Content == "" {
			return fmt.Errorf("%w: content", ErrMissingField)
		}
	case KindVoice:
		// Audio upload happens strictly before ingest.
		if draft.AudioRef == "" {
			return fmt.Errorf("%w: audio_url", ErrMissingField)
		}
	}
	return nil
}
