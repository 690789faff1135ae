package chat

import "time"

// Kind distinguishes message payload variants.
type Kind string

const (
	KindText  Kind = "text"
	KindVoice Kind = "voice"
)

// Valid reports whether k is a recognized message kind.
func (k Kind) Valid() bool {
	return k == KindText || k == KindVoice
}

// Message is a persisted chat message. Messages are immutable once created;
// ID and CreatedAt are assigned by the store at append time. ID doubles as
// the per-room insertion sequence, so (CreatedAt, ID) is a total order.
type Message struct {
	ID          int64     `json:"id"`
	RoomID      string    `json:"room_id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Kind        Kind      `json:"kind"`
	Content     string    `json:"content,omitempty"`
	AudioRef    string    `json:"audio_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Draft is an unpersisted candidate message submitted for ingest.
// SenderID must be the authenticated caller.
type Draft struct {
	SenderID    string
	RecipientID string
	Kind        Kind
	Content     string
	AudioRef    string
}
