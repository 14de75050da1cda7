package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helper function tests
// ---------------------------------------------------------------------------

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string // nil = don't set; pointer to distinguish "" from unset
		fallback string
		want     string
	}{
		{name: "returns fallback when unset", key: "TRAILD_TEST_GETENV_UNSET", setVal: nil, fallback: "default", want: "default"},
		{name: "returns env value when set", key: "TRAILD_TEST_GETENV_SET", setVal: strPtr("custom"), fallback: "default", want: "custom"},
		{name: "returns fallback when empty string", key: "TRAILD_TEST_GETENV_EMPTY", setVal: strPtr(""), fallback: "default", want: "default"},
		{name: "preserves whitespace", key: "TRAILD_TEST_GETENV_WS", setVal: strPtr("  spaced  "), fallback: "x", want: "  spaced  "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got := getEnv(tc.key, tc.fallback)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback int
		want     int
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "TRAILD_TEST_INT_UNSET", setVal: nil, fallback: 42, want: 42},
		{name: "parses valid int", key: "TRAILD_TEST_INT_VALID", setVal: strPtr("8080"), fallback: 0, want: 8080},
		{name: "parses negative int", key: "TRAILD_TEST_INT_NEG", setVal: strPtr("-1"), fallback: 0, want: -1},
		{name: "returns fallback for empty string", key: "TRAILD_TEST_INT_EMPTY", setVal: strPtr(""), fallback: 25, want: 25},
		{name: "errors on non-numeric", key: "TRAILD_TEST_INT_NAN", setVal: strPtr("abc"), fallback: 0, wantErr: true},
		{name: "errors on float", key: "TRAILD_TEST_INT_FLOAT", setVal: strPtr("3.14"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvInt(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback time.Duration
		want     time.Duration
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "TRAILD_TEST_DUR_UNSET", setVal: nil, fallback: 5 * time.Second, want: 5 * time.Second},
		{name: "parses seconds", key: "TRAILD_TEST_DUR_SEC", setVal: strPtr("30s"), fallback: 0, want: 30 * time.Second},
		{name: "parses composite", key: "TRAILD_TEST_DUR_COMP", setVal: strPtr("1h30m"), fallback: 0, want: 90 * time.Minute},
		{name: "errors on invalid", key: "TRAILD_TEST_DUR_INV", setVal: strPtr("notaduration"), fallback: 0, wantErr: true},
		{name: "errors on bare number", key: "TRAILD_TEST_DUR_BARE", setVal: strPtr("30"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvDuration(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvList(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback []string
		want     []string
	}{
		{name: "returns fallback when unset", key: "TRAILD_TEST_LIST_UNSET", setVal: nil, fallback: []string{"a"}, want: []string{"a"}},
		{name: "splits on commas", key: "TRAILD_TEST_LIST_SPLIT", setVal: strPtr("a,b,c"), want: []string{"a", "b", "c"}},
		{name: "trims whitespace", key: "TRAILD_TEST_LIST_WS", setVal: strPtr(" a , b "), want: []string{"a", "b"}},
		{name: "drops empty segments", key: "TRAILD_TEST_LIST_EMPTY", setVal: strPtr("a,,b,"), want: []string{"a", "b"}},
		{name: "nil fallback stays nil", key: "TRAILD_TEST_LIST_NIL", setVal: nil, fallback: nil, want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got := getEnvList(tc.key, tc.fallback)
			assert.Equal(t, tc.want, got)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() error cases
// ---------------------------------------------------------------------------

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("TRAILD_JWT_SECRET", "")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "TRAILD_JWT_SECRET")
}

func TestLoad_InvalidEnvVars(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		errMsg string
	}{
		{name: "DB_PORT not a number", envKey: "TRAILD_DB_PORT", envVal: "abc", errMsg: "TRAILD_DB_PORT"},
		{name: "DB_PORT zero", envKey: "TRAILD_DB_PORT", envVal: "0", errMsg: "TRAILD_DB_PORT"},
		{name: "DB_PORT too high", envKey: "TRAILD_DB_PORT", envVal: "65536", errMsg: "TRAILD_DB_PORT"},
		{name: "DB_MAX_CONNS zero", envKey: "TRAILD_DB_MAX_CONNS", envVal: "0", errMsg: "TRAILD_DB_MAX_CONNS"},
		{name: "DB_MAX_CONNS not a number", envKey: "TRAILD_DB_MAX_CONNS", envVal: "many", errMsg: "TRAILD_DB_MAX_CONNS"},
		{name: "REDIS_DB not a number", envKey: "TRAILD_REDIS_DB", envVal: "abc", errMsg: "TRAILD_REDIS_DB"},
		{name: "SERVER_READ_TIMEOUT invalid", envKey: "TRAILD_SERVER_READ_TIMEOUT", envVal: "notduration", errMsg: "TRAILD_SERVER_READ_TIMEOUT"},
		{name: "SERVER_READ_TIMEOUT zero", envKey: "TRAILD_SERVER_READ_TIMEOUT", envVal: "0s", errMsg: "TRAILD_SERVER_READ_TIMEOUT"},
		{name: "SERVER_WRITE_TIMEOUT zero", envKey: "TRAILD_SERVER_WRITE_TIMEOUT", envVal: "0s", errMsg: "TRAILD_SERVER_WRITE_TIMEOUT"},
		{name: "AUDIT_WRITE_TIMEOUT invalid", envKey: "TRAILD_AUDIT_WRITE_TIMEOUT", envVal: "soon", errMsg: "TRAILD_AUDIT_WRITE_TIMEOUT"},
		{name: "AUDIT_WRITE_TIMEOUT zero", envKey: "TRAILD_AUDIT_WRITE_TIMEOUT", envVal: "0s", errMsg: "TRAILD_AUDIT_WRITE_TIMEOUT"},
		{name: "LOG_RETENTION below 24h", envKey: "TRAILD_LOG_RETENTION", envVal: "1h", errMsg: "TRAILD_LOG_RETENTION"},
		{name: "RETENTION_SWEEP_INTERVAL zero", envKey: "TRAILD_RETENTION_SWEEP_INTERVAL", envVal: "0s", errMsg: "TRAILD_RETENTION_SWEEP_INTERVAL"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Always set JWT secret so failures are from the var under test.
			t.Setenv("TRAILD_JWT_SECRET", "test-secret-for-error-cases-32ch!")
			t.Setenv(tc.envKey, tc.envVal)

			cfg, err := Load()
			require.Error(t, err, "expected error for %s=%q", tc.envKey, tc.envVal)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() happy paths
// ---------------------------------------------------------------------------

func TestLoad_Defaults(t *testing.T) {
	// Only the required JWT secret is set; everything else uses defaults.
	t.Setenv("TRAILD_JWT_SECRET", "my-dev-secret-at-least-32-chars!!")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Database defaults.
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "traild", cfg.Database.User)
	assert.Empty(t, cfg.Database.Password)
	assert.Equal(t, "traild_dev", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxConns)

	// Redis defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.Redis.Password)
	assert.Equal(t, 0, cfg.Redis.DB)

	// Server defaults.
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)

	// Slack defaults: alerting disabled, channel preset.
	assert.Empty(t, cfg.Slack.BotToken)
	assert.Equal(t, "#ops-alerts", cfg.Slack.AlertChannel)

	// Webhook ingest disabled without a secret.
	assert.Empty(t, cfg.Webhook.Secret)

	// Ledger defaults.
	assert.Equal(t, 5*time.Second, cfg.Audit.WriteTimeout)
	assert.Nil(t, cfg.Audit.RedactExtra)
	assert.Equal(t, 90*24*time.Hour, cfg.Retention.LogMaxAge)
	assert.Equal(t, 24*time.Hour, cfg.Retention.SweepInterval)
}

func TestLoad_AllCustomValues(t *testing.T) {
	envs := map[string]string{
		// Database
		"TRAILD_DB_HOST":      "db.prod.internal",
		"TRAILD_DB_PORT":      "5433",
		"TRAILD_DB_USER":      "prod_user",
		"TRAILD_DB_PASSWORD":  "s3cret!",
		"TRAILD_DB_NAME":      "traild_prod",
		"TRAILD_DB_SSLMODE":   "require",
		"TRAILD_DB_MAX_CONNS": "50",
		// Redis
		"TRAILD_REDIS_ADDR":     "redis.prod:6380",
		"TRAILD_REDIS_PASSWORD": "redis-pass",
		"TRAILD_REDIS_DB":       "3",
		// JWT
		"TRAILD_JWT_SECRET": "prod-jwt-secret-256-bits-long!!!",
		// Server
		"TRAILD_SERVER_ADDR":          ":9090",
		"TRAILD_SERVER_READ_TIMEOUT":  "5s",
		"TRAILD_SERVER_WRITE_TIMEOUT": "15s",
		"TRAILD_CORS_ORIGINS":         "https://app.example.com,https://admin.example.com",
		// Slack
		"TRAILD_SLACK_BOT_TOKEN":     "xoxb-test",
		"TRAILD_SLACK_ALERT_CHANNEL": "#incidents",
		// Webhook
		"TRAILD_WEBHOOK_SECRET": "whsec_test",
		// Ledger
		"TRAILD_AUDIT_WRITE_TIMEOUT":      "2s",
		"TRAILD_REDACT_EXTRA":             "internal_notes,support_pin",
		"TRAILD_LOG_RETENTION":            "720h",
		"TRAILD_RETENTION_SWEEP_INTERVAL": "6h",
	}

	for k, v := range envs {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "db.prod.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "prod_user", cfg.Database.User)
	assert.Equal(t, "s3cret!", cfg.Database.Password)
	assert.Equal(t, "traild_prod", cfg.Database.DBName)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, 50, cfg.Database.MaxConns)

	assert.Equal(t, "redis.prod:6380", cfg.Redis.Addr)
	assert.Equal(t, "redis-pass", cfg.Redis.Password)
	assert.Equal(t, 3, cfg.Redis.DB)

	assert.Equal(t, "prod-jwt-secret-256-bits-long!!!", cfg.JWT.Secret)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.CORSOrigins)

	assert.Equal(t, "xoxb-test", cfg.Slack.BotToken)
	assert.Equal(t, "#incidents", cfg.Slack.AlertChannel)

	assert.Equal(t, "whsec_test", cfg.Webhook.Secret)

	assert.Equal(t, 2*time.Second, cfg.Audit.WriteTimeout)
	assert.Equal(t, []string{"internal_notes", "support_pin"}, cfg.Audit.RedactExtra)
	assert.Equal(t, 720*time.Hour, cfg.Retention.LogMaxAge)
	assert.Equal(t, 6*time.Hour, cfg.Retention.SweepInterval)
}

// ---------------------------------------------------------------------------
// DSN() output format
// ---------------------------------------------------------------------------

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "default dev values",
			cfg: DatabaseConfig{
				Host: "localhost", Port: 5432, User: "traild",
				Password: "", DBName: "traild_dev", SSLMode: "disable",
			},
			want: "host=localhost port=5432 user=traild password= dbname=traild_dev sslmode=disable",
		},
		{
			name: "production values",
			cfg: DatabaseConfig{
				Host: "db.prod", Port: 5433, User: "admin",
				Password: "p@ss!", DBName: "traild_prod", SSLMode: "require",
			},
			want: "host=db.prod port=5433 user=admin password=p@ss! dbname=traild_prod sslmode=require",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.cfg.DSN())
		})
	}
}

// ---------------------------------------------------------------------------
// validate() direct tests
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	// validBase returns a Config that passes validation.
	validBase := func() *Config {
		return &Config{
			Database: DatabaseConfig{Port: 5432, MaxConns: 25, SSLMode: "require"},
			JWT:      JWTConfig{Secret: "test-secret-that-is-at-least-32ch"},
			Server: ServerConfig{
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
			},
			Webhook: WebhookConfig{Secret: "whsec"},
			Audit:   AuditConfig{WriteTimeout: 5 * time.Second},
			Retention: RetentionConfig{
				LogMaxAge:     90 * 24 * time.Hour,
				SweepInterval: 24 * time.Hour,
			},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validBase().validate())
	})

	t.Run("empty JWT secret fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.JWT.Secret = ""
		assert.ErrorContains(t, c.validate(), "TRAILD_JWT_SECRET")
	})

	t.Run("JWT secret too short fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.JWT.Secret = "only-31-characters-long-secret!"
		assert.ErrorContains(t, c.validate(), "TRAILD_JWT_SECRET")
	})

	t.Run("port 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.Port = 0
		assert.ErrorContains(t, c.validate(), "TRAILD_DB_PORT")
	})

	t.Run("port 65535 passes", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.Port = 65535
		assert.NoError(t, c.validate())
	})

	t.Run("MaxConns 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.MaxConns = 0
		assert.ErrorContains(t, c.validate(), "TRAILD_DB_MAX_CONNS")
	})

	t.Run("audit write timeout 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Audit.WriteTimeout = 0
		assert.ErrorContains(t, c.validate(), "TRAILD_AUDIT_WRITE_TIMEOUT")
	})

	t.Run("retention below 24h fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Retention.LogMaxAge = 12 * time.Hour
		assert.ErrorContains(t, c.validate(), "TRAILD_LOG_RETENTION")
	})

	t.Run("retention exactly 24h passes", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Retention.LogMaxAge = 24 * time.Hour
		assert.NoError(t, c.validate())
	})

	t.Run("sweep interval 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Retention.SweepInterval = 0
		assert.ErrorContains(t, c.validate(), "TRAILD_RETENTION_SWEEP_INTERVAL")
	})
}

// ---------------------------------------------------------------------------
// Test helper
// ---------------------------------------------------------------------------

func strPtr(s string) *string {
	return &s
}
