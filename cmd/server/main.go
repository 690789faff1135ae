package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/linguachat/linguachat-server/internal/app"
	"github.com/linguachat/linguachat-server/internal/config"
	"github.com/linguachat/linguachat-server/internal/log"
)

var (
	configPath string
	addr       string
	logLevel   string
	logJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "linguachat-server",
	Short: "Two-party chat server with voice translation",
	Long: `linguachat-server persists text and voice messages, fans them out to
live subscribers per room, and translates voice messages into the
recipient's preferred language.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&logJSON, "log-json", false, "emit JSON logs instead of console output")
}

func run(cmd *cobra.Command, _ []string) error {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	logger := log.New(logLevel, logJSON)

	cfg, cfgPath, err := config.Load(logger, configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger = log.New(cfg.LogLevel, logJSON)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Str("config", cfgPath).
		Msg("starting linguachat server")

	if err := application.Run(ctx); err != nil {
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger := log.New("error", false)
		logger.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}
