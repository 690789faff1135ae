package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/linguachat/linguachat-server/internal/store"
)

// UserHandlers provides HTTP handlers for user operations.
type UserHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(st store.Store, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		store: st,
		log:   logger,
	}
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID                int64  `json:"id"`
	Username          string `json:"username"`
	PreferredLanguage string `json:"preferred_language"`
}

// LanguageResponse represents a user's preferred language.
type LanguageResponse struct {
	PreferredLanguage string `json:"preferred_language"`
}

// ListUsers lists all users except the caller, for peer selection.
// GET /api/users
func (h *UserHandlers) ListUsers(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		if u.ID == identity.UserID {
			continue
		}
		response = append(response, UserResponse{
			ID:                u.ID,
			Username:          u.Username,
			PreferredLanguage: u.PreferredLanguage,
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetLanguage returns a user's preferred language, defaulting to "en".
// GET /api/users/:username/language
func (h *UserHandlers) GetLanguage(c *gin.Context) {
	username := c.Param("username")

	user, err := h.store.GetUserByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Str("username", username).Msg("failed to get user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	language := user.PreferredLanguage
	if language == "" {
		language = "en"
	}
	c.JSON(http.StatusOK, LanguageResponse{PreferredLanguage: language})
}
