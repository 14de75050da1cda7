package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/veritrail/traild/internal/actor"
	"github.com/veritrail/traild/internal/alert"
	"github.com/veritrail/traild/internal/audit"
	"github.com/veritrail/traild/internal/config"
	"github.com/veritrail/traild/internal/correlation"
	"github.com/veritrail/traild/internal/eventlog"
	"github.com/veritrail/traild/internal/redact"
	"github.com/veritrail/traild/internal/server"
	"github.com/veritrail/traild/internal/store/postgres"
	redisstore "github.com/veritrail/traild/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	// Initialize structured logging from environment.
	logLevel := os.Getenv("TRAILD_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("TRAILD_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	// Connect to Redis.
	pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer pubsub.Close()
	fanout := redisstore.NewFanout(pubsub)

	// One resolver and one sanitizer per ledger; the two ledgers share the
	// resolver so actor precedence cannot diverge between them.
	resolver := actor.NewResolver()
	auditSanitizer := redact.NewSanitizer(redact.AuditPolicy(cfg.Audit.RedactExtra...))
	logSanitizer := redact.NewSanitizer(redact.LogPolicy(cfg.Audit.RedactExtra...))

	// Operational event ledger.
	events := eventlog.New(store.SystemLogs(), resolver, logSanitizer).
		WithPublisher(fanout).
		WithWriteTimeout(cfg.Audit.WriteTimeout)
	if cfg.Slack.BotToken != "" {
		events = events.WithAlerter(alert.NewNotifier(slacklib.New(cfg.Slack.BotToken), cfg.Slack.AlertChannel))
	}

	// Audit ledger, emitting a correlated system log per entry.
	recorder := audit.New(store.Audit(), events, resolver, auditSanitizer).
		WithPublisher(fanout).
		WithWriteTimeout(cfg.Audit.WriteTimeout)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Retention sweeper: system logs only, audit entries are kept forever.
	go runRetentionSweep(ctx, events, cfg.Retention)

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, recorder, events, pubsub)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}

// runRetentionSweep purges expired system logs on a fixed interval until ctx
// is cancelled. Each sweep runs as the scheduler actor under its own
// correlation id so the purge itself shows up in the event ledger.
func runRetentionSweep(ctx context.Context, events *eventlog.Logger, cfg config.RetentionConfig) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, _ := correlation.Start(actor.WithScheduler(ctx))
			cutoff := time.Now().UTC().Add(-cfg.LogMaxAge)

			removed, err := events.Purge(sweepCtx, cutoff)
			if err != nil {
				log.Error().Err(err).Msg("retention sweep failed")
				continue
			}
			log.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("retention sweep complete")

			if removed > 0 {
				_, recErr := events.Record(sweepCtx, eventlog.Request{
					EventType: "system.retention.sweep",
					Message:   fmt.Sprintf("purged %d expired system log records", removed),
					Context: map[string]any{
						"removed": removed,
						"cutoff":  cutoff.Format(time.RFC3339),
					},
				})
				if recErr != nil {
					log.Warn().Err(recErr).Msg("retention sweep record failed")
				}
			}
		}
	}
}
