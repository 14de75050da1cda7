package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Server    ServerConfig
	Slack     SlackConfig
	Webhook   WebhookConfig
	Audit     AuditConfig
	Retention RetentionConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings for event fanout.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds token verification settings. Tokens are issued by the
// platform identity service; this service only verifies them.
type JWTConfig struct {
	Secret string //nolint:gosec // G117: JWT signing secret config
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// SlackConfig holds critical-alert notification settings. Alerting is
// disabled when the bot token is empty.
type SlackConfig struct {
	BotToken     string
	AlertChannel string
}

// WebhookConfig holds the shared secret for the webhook ingest endpoint.
type WebhookConfig struct {
	Secret string //nolint:gosec // G117: webhook shared secret config
}

// AuditConfig holds ledger write settings.
type AuditConfig struct {
	WriteTimeout time.Duration
	RedactExtra  []string // extra denylist substrings on top of the built-in policy
}

// RetentionConfig holds the system-log retention sweep settings. Audit
// entries are compliance records and are never purged.
type RetentionConfig struct {
	LogMaxAge     time.Duration
	SweepInterval time.Duration
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("TRAILD_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("TRAILD_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("TRAILD_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("TRAILD_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("TRAILD_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	auditWriteTimeout, err := getEnvDuration("TRAILD_AUDIT_WRITE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	logMaxAge, err := getEnvDuration("TRAILD_LOG_RETENTION", 90*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	sweepInterval, err := getEnvDuration("TRAILD_RETENTION_SWEEP_INTERVAL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("TRAILD_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("TRAILD_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("TRAILD_DB_USER", "traild"),
			Password: getEnv("TRAILD_DB_PASSWORD", ""),
			DBName:   getEnv("TRAILD_DB_NAME", "traild_dev"),
			SSLMode:  getEnv("TRAILD_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("TRAILD_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("TRAILD_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret: getEnv("TRAILD_JWT_SECRET", ""),
		},
		Server: ServerConfig{
			Addr:         getEnv("TRAILD_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		Slack: SlackConfig{
			BotToken:     getEnv("TRAILD_SLACK_BOT_TOKEN", ""),
			AlertChannel: getEnv("TRAILD_SLACK_ALERT_CHANNEL", "#ops-alerts"),
		},
		Webhook: WebhookConfig{
			Secret: getEnv("TRAILD_WEBHOOK_SECRET", ""),
		},
		Audit: AuditConfig{
			WriteTimeout: auditWriteTimeout,
			RedactExtra:  getEnvList("TRAILD_REDACT_EXTRA", nil),
		},
		Retention: RetentionConfig{
			LogMaxAge:     logMaxAge,
			SweepInterval: sweepInterval,
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("TRAILD_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("TRAILD_JWT_SECRET must be at least 32 characters")
	}

	if c.Database.SSLMode == "disable" {
		log.Warn().Msg("TRAILD_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}
	if c.Webhook.Secret == "" {
		log.Warn().Msg("TRAILD_WEBHOOK_SECRET is empty; webhook ingest is disabled")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("TRAILD_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("TRAILD_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("TRAILD_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("TRAILD_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Audit.WriteTimeout <= 0 {
		return fmt.Errorf("TRAILD_AUDIT_WRITE_TIMEOUT must be positive, got %s", c.Audit.WriteTimeout)
	}
	if c.Retention.LogMaxAge < 24*time.Hour {
		return fmt.Errorf("TRAILD_LOG_RETENTION must be at least 24h, got %s", c.Retention.LogMaxAge)
	}
	if c.Retention.SweepInterval <= 0 {
		return fmt.Errorf("TRAILD_RETENTION_SWEEP_INTERVAL must be positive, got %s", c.Retention.SweepInterval)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
