package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/linguachat/linguachat-server/internal/auth"
	"github.com/linguachat/linguachat-server/internal/blob"
	"github.com/linguachat/linguachat-server/internal/bus"
	"github.com/linguachat/linguachat-server/internal/chat"
	"github.com/linguachat/linguachat-server/internal/config"
	"github.com/linguachat/linguachat-server/internal/store"
	"github.com/linguachat/linguachat-server/internal/translate"
)

// Deps bundles everything the HTTP layer needs.
type Deps struct {
	Auth       *auth.Service
	Chat       *chat.Service
	Store      store.Store
	Bus        bus.Bus
	Blobs      blob.Storage
	Translator translate.Translator // nil disables translation
	Log        *zerolog.Logger
}

// NewServer builds the HTTP server with all routes wired.
func NewServer(cfg config.Config, deps Deps) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg, deps),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter builds the gin engine. Split from NewServer so tests can drive
// it with httptest.
func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(deps.Log), MetricsMiddleware())

	router.GET("/healthz", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/uploads", cfg.UploadDir)

	apiHandlers := NewAPIHandlers(deps.Auth, deps.Log)
	userHandlers := NewUserHandlers(deps.Store, deps.Log)
	messageHandlers := NewMessageHandlers(deps.Chat, deps.Store, deps.Log)
	uploadHandlers := NewUploadHandlers(deps.Chat, deps.Store, deps.Blobs, deps.Translator,
		newRateLimiter(cfg.UploadsPerMinute), deps.Log)
	wsHandler := NewWSHandler(deps.Chat, deps.Bus, deps.Store, deps.Log)

	api := router.Group("/api")
	api.POST("/register", apiHandlers.Register)
	api.POST("/login", apiHandlers.Login)

	authed := api.Group("", AuthMiddleware(deps.Auth, deps.Log))
	authed.GET("/users", userHandlers.ListUsers)
	authed.GET("/users/:username/language", userHandlers.GetLanguage)
	authed.GET("/rooms/:peer/messages", messageHandlers.ListRoomMessages)
	authed.POST("/rooms/:peer/messages", messageHandlers.CreateRoomMessage)
	authed.POST("/uploads", uploadHandlers.CreateVoiceMessage)

	router.GET("/ws/rooms/:peer", AuthMiddleware(deps.Auth, deps.Log), wsHandler.Serve)

	return router
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
