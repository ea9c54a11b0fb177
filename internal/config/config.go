// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `envconfig:"PORT" default:"8080"`

	// DatabaseURL is the Postgres connection string. Required for the
	// postgres backend and for SYNC_FROM_DATABASE.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins OriginList `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`

	// StoreBackend selects where trips and notifications live.
	StoreBackend string `envconfig:"STORE_BACKEND" default:"postgres"`

	Redis RedisConfig

	// SyncFromDatabase pulls a snapshot from Postgres into a cache backend
	// at startup. Ignored for the postgres backend.
	SyncFromDatabase bool `envconfig:"SYNC_FROM_DATABASE" default:"false"`

	// MigrateOnStart runs the embedded goose migrations before serving.
	MigrateOnStart bool `envconfig:"MIGRATE_ON_START" default:"true"`

	// AttachmentDir is where uploaded attachment bytes are written.
	AttachmentDir string `envconfig:"ATTACHMENT_DIR" default:"./data/attachments"`

	// MaxBodyBytes caps request bodies, uploads included.
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"10485760"`

	SMTP SMTPConfig
}

// RedisConfig addresses the redis cache backend.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// SMTPConfig configures mail delivery. Delivery is off when Host is empty;
// notifications are still recorded.
type SMTPConfig struct {
	Host          string `envconfig:"SMTP_HOST"`
	Port          int    `envconfig:"SMTP_PORT" default:"587"`
	User          string `envconfig:"SMTP_USER"`
	Pass          string `envconfig:"SMTP_PASS"`
	From          string `envconfig:"SMTP_FROM"`
	SkipTLSVerify bool   `envconfig:"SMTP_SKIP_TLS_VERIFY" default:"false"`
}

// Enabled reports whether a mail transport is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// NeedsDatabase reports whether the configuration requires a Postgres connection.
func (c Config) NeedsDatabase() bool {
	return c.StoreBackend == BackendPostgres || c.SyncFromDatabase
}

// OriginList is a comma-separated list of origins. Entries are trimmed and
// empty entries dropped.
type OriginList []string

// Decode implements envconfig.Decoder.
func (o *OriginList) Decode(value string) error {
	*o = splitCSV(value)
	return nil
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence over it.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	switch cfg.StoreBackend {
	case BackendPostgres, BackendMemory, BackendRedis:
	default:
		return Config{}, fmt.Errorf("config: unknown STORE_BACKEND %q (want postgres, memory or redis)", cfg.StoreBackend)
	}

	var missing []string
	if cfg.NeedsDatabase() && cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.StoreBackend == BackendRedis && cfg.Redis.Addr == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if cfg.SMTP.Enabled() && cfg.SMTP.From == "" {
		missing = append(missing, "SMTP_FROM")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
