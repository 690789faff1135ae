package http

import (
	"time"

	"github.com/linguachat/linguachat-server/internal/chat"
)

// MessageResponse represents a message in API responses and live-feed
// frames. Clients deduplicate by ID when merging history with the feed.
type MessageResponse struct {
	ID          int64  `json:"id"`
	RoomID      string `json:"room_id"`
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Kind        string `json:"kind"`
	Content     string `json:"content,omitempty"`
	AudioURL    string `json:"audio_url,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// Outbound is the envelope for live-feed frames sent to websocket clients.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// EventNewMessage is the live-feed event name for an ingested message.
const EventNewMessage = "new-message"

func toMessageResponse(msg *chat.Message) MessageResponse {
	return MessageResponse{
		ID:          msg.ID,
		RoomID:      msg.RoomID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Kind:        string(msg.Kind),
		Content:     msg.Content,
		AudioURL:    msg.AudioRef,
		CreatedAt:   msg.CreatedAt.Format(time.RFC3339),
	}
}

func toMessageResponses(msgs []*chat.Message) []MessageResponse {
	responses := make([]MessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		responses = append(responses, toMessageResponse(msg))
	}
	return responses
}

func outboundNewMessage(msg *chat.Message) Outbound {
	return Outbound{
		Type:  "event",
		Event: EventNewMessage,
		Data:  toMessageResponse(msg),
	}
}
