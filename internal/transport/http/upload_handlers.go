package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/linguachat/linguachat-server/internal/blob"
	"github.com/linguachat/linguachat-server/internal/chat"
	"github.com/linguachat/linguachat-server/internal/metrics"
	"github.com/linguachat/linguachat-server/internal/store"
	"github.com/linguachat/linguachat-server/internal/translate"
)

// maxUploadBytes caps a single voice recording.
const maxUploadBytes = 15 << 20

// UploadHandlers runs the voice pipeline: translate (best-effort), store
// the audio blob, then ingest a voice message. Ingest is only reached with
// a complete, durable audio ref.
type UploadHandlers struct {
	chat       *chat.Service
	store      store.Store
	blobs      blob.Storage
	translator translate.Translator
	limiter    *rateLimiter
	log        *zerolog.Logger
}

// NewUploadHandlers creates a new upload handlers instance.
func NewUploadHandlers(chatService *chat.Service, st store.Store, blobs blob.Storage,
	translator translate.Translator, limiter *rateLimiter, logger *zerolog.Logger) *UploadHandlers {
	return &UploadHandlers{
		chat:       chatService,
		store:      st,
		blobs:      blobs,
		translator: translator,
		limiter:    limiter,
		log:        logger,
	}
}

// CreateVoiceMessage accepts a multipart voice recording addressed to the
// "recipient" form field and responds with the persisted voice message.
// POST /api/uploads
func (h *UploadHandlers) CreateVoiceMessage(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	if !h.limiter.allow() {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "upload limit reached, try again later"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	recipient := c.PostForm("recipient")
	if recipient == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "recipient is required", Code: chat.ErrCodeMissingField})
		return
	}

	recipientUser, err := h.store.GetUserByUsername(c.Request.Context(), recipient)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Str("recipient", recipient).Msg("failed to look up recipient")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no audio file uploaded"})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil || len(audio) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no audio file uploaded"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/webm"
	}

	// Translation is best-effort: on failure the original recording is
	// sent with an empty transcript rather than dropping the message.
	transcript := ""
	finalAudio := audio
	finalType := contentType
	if h.translator != nil {
		targetLang := recipientUser.PreferredLanguage
		if targetLang == "" {
			targetLang = "en"
		}
		result, terr := h.translator.Translate(c.Request.Context(), audio, contentType, targetLang)
		if terr != nil {
			metrics.TranslationFailures.Inc()
			h.log.Warn().Err(terr).
				Str("recipient", recipient).
				Msg("voice translation failed, sending original recording")
		} else {
			transcript = result.Transcript
			if len(result.Audio) > 0 {
				finalAudio = result.Audio
				finalType = result.ContentType
			}
		}
	}

	ref, err := h.blobs.Put(c.Request.Context(), finalType, bytes.NewReader(finalAudio))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to store audio blob")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "upload failed"})
		return
	}

	msg, err := h.chat.Submit(c.Request.Context(), chat.Draft{
		SenderID:    identity.Username,
		RecipientID: recipient,
		Kind:        chat.KindVoice,
		Content:     transcript,
		AudioRef:    ref,
	})
	if err != nil {
		if code := chat.Code(err); code != "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: code})
			return
		}
		h.log.Error().Err(err).Msg("failed to ingest voice message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	metrics.VoiceUploads.Inc()
	c.JSON(http.StatusCreated, toMessageResponse(msg))
}
