package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/linguachat/linguachat-server/internal/chat"
	"github.com/linguachat/linguachat-server/internal/store"
)

// MessageHandlers provides HTTP handlers for room history and submission.
type MessageHandlers struct {
	chat  *chat.Service
	store store.Store
	log   *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(chatService *chat.Service, st store.Store, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		chat:  chatService,
		store: st,
		log:   logger,
	}
}

// CreateMessageRequest represents the message submission body. Kind
// defaults to "text"; voice messages carry the audio_url returned by the
// upload endpoint.
type CreateMessageRequest struct {
	Kind     string `json:"kind"`
	Content  string `json:"content"`
	AudioURL string `json:"audio_url"`
}

// HistoryResponse wraps a room's full message history.
type HistoryResponse struct {
	RoomID   string            `json:"room_id"`
	Messages []MessageResponse `json:"messages"`
}

// ListRoomMessages returns the full ordered history of the room between
// the caller and :peer.
// GET /api/rooms/:peer/messages
func (h *MessageHandlers) ListRoomMessages(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	roomID, done := h.resolveRoom(c, identity)
	if done {
		return
	}

	messages, err := h.chat.History(c.Request.Context(), roomID)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, HistoryResponse{
		RoomID:   roomID,
		Messages: toMessageResponses(messages),
	})
}

// CreateRoomMessage submits a message to the room between the caller and
// :peer. The sender is always the authenticated caller.
// POST /api/rooms/:peer/messages
func (h *MessageHandlers) CreateRoomMessage(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	if _, done := h.resolveRoom(c, identity); done {
		return
	}

	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid message request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Kind == "" {
		req.Kind = string(chat.KindText)
	}

	msg, err := h.chat.Submit(c.Request.Context(), chat.Draft{
		SenderID:    identity.Username,
		RecipientID: c.Param("peer"),
		Kind:        chat.Kind(req.Kind),
		Content:     req.Content,
		AudioRef:    req.AudioURL,
	})
	if err != nil {
		h.respondSubmitError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMessageResponse(msg))
}

// resolveRoom validates the peer and derives the canonical room id.
// Returns done=true if it already wrote a response.
func (h *MessageHandlers) resolveRoom(c *gin.Context, identity Identity) (string, bool) {
	peer := c.Param("peer")

	if _, err := h.store.GetUserByUsername(c.Request.Context(), peer); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return "", true
		}
		h.log.Error().Err(err).Str("peer", peer).Msg("failed to look up peer")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return "", true
	}

	roomID, err := h.chat.ResolveRoom(identity.Username, peer)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: chat.Code(err)})
		return "", true
	}
	return roomID, false
}

func (h *MessageHandlers) respondSubmitError(c *gin.Context, err error) {
	if code := chat.Code(err); code != "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: code})
		return
	}
	h.log.Error().Err(err).Msg("failed to submit message")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
