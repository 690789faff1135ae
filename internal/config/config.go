package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// DatabaseDriver selects the store backend: "sqlite" or "postgres".
	DatabaseDriver string `mapstructure:"database_driver" yaml:"database_driver"`
	DatabasePath   string `mapstructure:"database_path" yaml:"database_path"`
	DatabaseURL    string `mapstructure:"database_url" yaml:"database_url"`

	// RedisURL switches the fan-out bus to Redis pub/sub. Empty keeps the
	// in-process bus (single instance only).
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	TokenTTL    time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`

	UploadDir          string `mapstructure:"upload_dir" yaml:"upload_dir"`
	UploadsPerMinute   int    `mapstructure:"uploads_per_minute" yaml:"uploads_per_minute"`
	TranslationEnabled bool   `mapstructure:"translation_enabled" yaml:"translation_enabled"`

	// AllowSelfChat permits a user to open a room with themselves.
	AllowSelfChat bool `mapstructure:"allow_self_chat" yaml:"allow_self_chat"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":8080",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		DatabaseDriver:     "sqlite",
		DatabasePath:       "linguachat.db",
		JWTSecret:          "change-me",
		JWTIssuer:          "linguachat",
		JWTAudience:        "linguachat-clients",
		TokenTTL:           7 * 24 * time.Hour,
		UploadDir:          "uploads",
		UploadsPerMinute:   30,
		TranslationEnabled: true,
	}
}
