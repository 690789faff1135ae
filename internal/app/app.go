package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/linguachat/linguachat-server/internal/auth"
	"github.com/linguachat/linguachat-server/internal/blob/disk"
	"github.com/linguachat/linguachat-server/internal/bus"
	"github.com/linguachat/linguachat-server/internal/bus/memory"
	"github.com/linguachat/linguachat-server/internal/bus/redisbus"
	"github.com/linguachat/linguachat-server/internal/chat"
	"github.com/linguachat/linguachat-server/internal/config"
	"github.com/linguachat/linguachat-server/internal/store"
	"github.com/linguachat/linguachat-server/internal/store/postgres"
	"github.com/linguachat/linguachat-server/internal/store/sqlite"
	"github.com/linguachat/linguachat-server/internal/translate"
	"github.com/linguachat/linguachat-server/internal/translate/openai"
	transporthttp "github.com/linguachat/linguachat-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	store           store.Store
	bus             bus.Bus
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("driver", cfg.DatabaseDriver).Msg("database initialized")

	b, err := newBus(ctx, cfg, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init bus: %w", err)
	}

	blobs, err := disk.New(cfg.UploadDir, "/uploads")
	if err != nil {
		st.Close()
		b.Close()
		return nil, fmt.Errorf("init blob storage: %w", err)
	}

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	}
	authService := auth.NewService(st, jwtConfig)

	var chatOpts []chat.Option
	if cfg.AllowSelfChat {
		chatOpts = append(chatOpts, chat.WithSelfChat())
	}
	chatService := chat.NewService(st, b, logger, chatOpts...)

	var translator translate.Translator
	if cfg.TranslationEnabled {
		translator = openai.New()
	} else {
		logger.Info().Msg("voice translation disabled")
	}

	server := transporthttp.NewServer(cfg, transporthttp.Deps{
		Auth:       authService,
		Chat:       chatService,
		Store:      st,
		Bus:        b,
		Blobs:      blobs,
		Translator: translator,
		Log:        logger,
	})

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		bus:             b,
		log:             logger,
	}, nil
}

func newStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case "", "sqlite":
		return sqlite.New(cfg.DatabasePath)
	case "postgres":
		return postgres.New(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
}

func newBus(ctx context.Context, cfg config.Config, logger *zerolog.Logger) (bus.Bus, error) {
	if cfg.RedisURL == "" {
		return memory.New(), nil
	}
	return redisbus.New(ctx, cfg.RedisURL, logger)
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the store, bus and other resources.
func (a *App) cleanup() {
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close bus")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
