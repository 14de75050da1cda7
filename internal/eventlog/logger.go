// Package eventlog writes the operational event ledger: SystemLog records
// for any event, successful or failed, at any severity.
package eventlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/veritrail/traild/internal/actor"
	"github.com/veritrail/traild/internal/correlation"
	"github.com/veritrail/traild/internal/domain"
	"github.com/veritrail/traild/internal/redact"
	"github.com/veritrail/traild/internal/requestmeta"
)

// Sentinel errors for the eventlog package.
var (
	ErrMissingEventType = errors.New("eventlog: event type required")
	ErrInvalidSeverity  = errors.New("eventlog: invalid severity")
)

// maxMessageLen bounds the human summary; longer messages are truncated,
// not rejected.
const maxMessageLen = 500

const defaultWriteTimeout = 5 * time.Second

// Alerter pushes a notification for critical events. Implementations are
// best-effort; failures are logged and dropped.
type Alerter interface {
	CriticalEvent(ctx context.Context, entry *domain.SystemLog) error
}

// Publisher fans a committed log entry out to live consumers. Best-effort.
type Publisher interface {
	PublishLog(ctx context.Context, entry *domain.SystemLog) error
}

// Request describes one event to record. Zero-valued Severity and Status
// default to info/success.
type Request struct {
	EventType  string
	Message    string
	Severity   domain.Severity
	Status     domain.LogStatus
	Context    map[string]any
	TenantID   *uuid.UUID
	TargetType string
	TargetID   string
	Actor      *domain.Actor
}

// Option mutates a Request in the category helpers.
type Option func(*Request)

func WithTenant(id uuid.UUID) Option {
	return func(r *Request) { r.TenantID = &id }
}

func WithTarget(targetType, targetID string) Option {
	return func(r *Request) { r.TargetType, r.TargetID = targetType, targetID }
}

func WithActor(a domain.Actor) Option {
	return func(r *Request) { r.Actor = &a }
}

func WithStatus(s domain.LogStatus) Option {
	return func(r *Request) { r.Status = s }
}

// Logger is the operational ledger service. The actor resolver and the
// sanitizer are injected so the audit recorder and this logger share one
// implementation of each.
type Logger struct {
	repo         domain.SystemLogRepository
	resolver     *actor.Resolver
	sanitizer    *redact.Sanitizer
	alerter      Alerter   // nil when alerting is not configured
	publisher    Publisher // nil when fanout is not configured
	writeTimeout time.Duration
}

func New(repo domain.SystemLogRepository, resolver *actor.Resolver, sanitizer *redact.Sanitizer) *Logger {
	return &Logger{
		repo:         repo,
		resolver:     resolver,
		sanitizer:    sanitizer,
		writeTimeout: defaultWriteTimeout,
	}
}

// WithAlerter attaches a critical-event alerter.
func (l *Logger) WithAlerter(a Alerter) *Logger {
	l.alerter = a
	return l
}

// WithPublisher attaches a live-event publisher.
func (l *Logger) WithPublisher(p Publisher) *Logger {
	l.publisher = p
	return l
}

// WithWriteTimeout bounds the storage write; a slow insert must not hang
// the calling operation.
func (l *Logger) WithWriteTimeout(d time.Duration) *Logger {
	if d > 0 {
		l.writeTimeout = d
	}
	return l
}

// Record writes one SystemLog row. The actor is resolved from ambient
// context unless supplied; the context payload is sanitized; the message
// is truncated to maxMessageLen runes; the active correlation id is
// inherited. A storage failure is returned to the caller.
func (l *Logger) Record(ctx context.Context, req Request) (*domain.SystemLog, error) {
	if req.EventType == "" {
		return nil, fmt.Errorf("eventlog.Logger.Record: %w", ErrMissingEventType)
	}
	if req.Severity == "" {
		req.Severity = domain.SeverityInfo
	}
	if !req.Severity.Valid() {
		return nil, fmt.Errorf("eventlog.Logger.Record: %q: %w", req.Severity, ErrInvalidSeverity)
	}
	if req.Status == "" {
		req.Status = domain.LogStatusSuccess
	}

	who := l.actorFor(ctx, req.Actor)
	meta := requestmeta.FromContext(ctx)
	corrID, _ := correlation.FromContext(ctx)

	entry := &domain.SystemLog{
		ID:            uuid.New(),
		OccurredAt:    time.Now().UTC(),
		EventType:     req.EventType,
		Severity:      req.Severity,
		Status:        req.Status,
		ActorType:     who.Type,
		ActorID:       who.ID,
		TenantID:      req.TenantID,
		TargetType:    req.TargetType,
		TargetID:      req.TargetID,
		IP:            meta.IP,
		UserAgent:     meta.UserAgent,
		CorrelationID: corrID,
		RequestID:     meta.RequestID,
		Message:       truncate(req.Message, maxMessageLen),
		Context:       l.sanitizer.Sanitize(req.Context),
	}

	writeCtx, cancel := context.WithTimeout(ctx, l.writeTimeout)
	defer cancel()

	if err := l.repo.Insert(writeCtx, entry); err != nil {
		return nil, fmt.Errorf("eventlog.Logger.Record: %w", err)
	}

	// Best-effort side effects after the durable write. Losing either is
	// tolerable; losing the row is not.
	if l.publisher != nil {
		if err := l.publisher.PublishLog(ctx, entry); err != nil {
			log.Warn().Err(err).Str("event_type", entry.EventType).Msg("eventlog: publish failed")
		}
	}
	if l.alerter != nil && entry.Severity == domain.SeverityCritical {
		if err := l.alerter.CriticalEvent(ctx, entry); err != nil {
			log.Warn().Err(err).Str("event_type", entry.EventType).Msg("eventlog: critical alert failed")
		}
	}

	return entry, nil
}

func (l *Logger) actorFor(ctx context.Context, explicit *domain.Actor) domain.Actor {
	if explicit != nil && explicit.Type.Valid() {
		return *explicit
	}
	return l.resolver.Resolve(ctx)
}

// Timeline returns all records sharing a correlation id, oldest first.
func (l *Logger) Timeline(ctx context.Context, correlationID string) ([]*domain.SystemLog, error) {
	entries, err := l.repo.ListByCorrelation(ctx, correlationID)
	if err != nil {
		return nil, fmt.Errorf("eventlog.Logger.Timeline: %w", err)
	}
	return entries, nil
}

// Summarize aggregates counts by severity, category and failure over the
// window starting at since.
func (l *Logger) Summarize(ctx context.Context, since time.Time) (*domain.LogSummary, error) {
	s, err := l.repo.Summarize(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("eventlog.Logger.Summarize: %w", err)
	}
	return s, nil
}

// Purge deletes records older than cutoff and returns the count removed.
// The audit ledger has no equivalent; only system logs are retention-bound.
func (l *Logger) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := l.repo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("eventlog.Logger.Purge: %w", err)
	}
	return n, nil
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
