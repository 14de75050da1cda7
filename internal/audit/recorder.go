// Package audit writes the entity-change ledger: immutable, checksummed
// AuditEntry records for every sensitive state change on the platform.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/veritrail/traild/internal/actor"
	"github.com/veritrail/traild/internal/correlation"
	"github.com/veritrail/traild/internal/domain"
	"github.com/veritrail/traild/internal/eventlog"
	"github.com/veritrail/traild/internal/redact"
	"github.com/veritrail/traild/internal/requestmeta"
)

const defaultWriteTimeout = 5 * time.Second

// Publisher fans a committed audit entry out to live consumers.
// Best-effort: failures never reach the caller.
type Publisher interface {
	PublishAudit(ctx context.Context, entry *domain.AuditEntry) error
}

// Request describes one audit fact to record.
type Request struct {
	Action      domain.Action
	EntityType  string
	EntityID    string
	EntityLabel string
	Changes     map[string]domain.Change
	Before      map[string]any
	After       map[string]any
	Reason      string
	TenantID    *uuid.UUID
	Metadata    map[string]any
	Actor       *domain.Actor
}

// Option mutates a Request in the convenience helpers.
type Option func(*Request)

func WithReason(reason string) Option {
	return func(r *Request) { r.Reason = reason }
}

func WithTenant(id uuid.UUID) Option {
	return func(r *Request) { r.TenantID = &id }
}

func WithMetadata(md map[string]any) Option {
	return func(r *Request) { r.Metadata = md }
}

func WithActor(a domain.Actor) Option {
	return func(r *Request) { r.Actor = &a }
}

// WithAction overrides the action a helper would otherwise pick
// (e.g. forcing Updated not to reclassify a status diff).
func WithAction(a domain.Action) Option {
	return func(r *Request) { r.Action = a }
}

// Recorder is the audit ledger service. The actor resolver and sanitizer
// are the same instances the event logger uses; the logger itself is
// injected for the correlated SystemLog emitted after each entry.
type Recorder struct {
	repo         domain.AuditRepository
	events       *eventlog.Logger
	resolver     *actor.Resolver
	sanitizer    *redact.Sanitizer
	publisher    Publisher // nil when fanout is not configured
	writeTimeout time.Duration
}

func New(repo domain.AuditRepository, events *eventlog.Logger, resolver *actor.Resolver, sanitizer *redact.Sanitizer) *Recorder {
	return &Recorder{
		repo:         repo,
		events:       events,
		resolver:     resolver,
		sanitizer:    sanitizer,
		writeTimeout: defaultWriteTimeout,
	}
}

// WithPublisher attaches a live-event publisher.
func (r *Recorder) WithPublisher(p Publisher) *Recorder {
	r.publisher = p
	return r
}

// WithWriteTimeout bounds the ledger insert; a slow audit write must not
// hang the business operation it describes.
func (r *Recorder) WithWriteTimeout(d time.Duration) *Recorder {
	if d > 0 {
		r.writeTimeout = d
	}
	return r
}

// Record writes one AuditEntry. Unknown actions and missing entity
// identity are rejected up front. The actor is resolved from ambient
// context unless supplied; changes, before and after are sanitized
// independently; the checksum is computed over the canonical payload
// before the single insert. A storage failure propagates to the caller —
// the caller's intent was to produce a compliance record, so it must not
// be swallowed. The correlated SystemLog and the fanout that follow are
// best-effort only.
func (r *Recorder) Record(ctx context.Context, req Request) (*domain.AuditEntry, error) {
	if !req.Action.Valid() {
		return nil, fmt.Errorf("audit.Recorder.Record: %q: %w", req.Action, domain.ErrUnknownAction)
	}
	if req.EntityType == "" || req.EntityID == "" {
		return nil, fmt.Errorf("audit.Recorder.Record: %w", domain.ErrMissingEntity)
	}

	who := r.actorFor(ctx, req.Actor)
	meta := requestmeta.FromContext(ctx)
	corrID, _ := correlation.FromContext(ctx)

	entry := &domain.AuditEntry{
		ID:            uuid.New(),
		OccurredAt:    time.Now().UTC(),
		ActorType:     who.Type,
		ActorID:       who.ID,
		ActorEmail:    who.Email,
		Action:        req.Action,
		EntityType:    req.EntityType,
		EntityID:      req.EntityID,
		EntityLabel:   req.EntityLabel,
		TenantID:      req.TenantID,
		IP:            meta.IP,
		UserAgent:     meta.UserAgent,
		RequestID:     meta.RequestID,
		CorrelationID: corrID,
		Reason:        req.Reason,
		Changes:       r.sanitizeChanges(req.Changes),
		Before:        r.sanitizer.Sanitize(req.Before),
		After:         r.sanitizer.Sanitize(req.After),
		Metadata:      r.sanitizer.Sanitize(req.Metadata),
	}
	entry.Checksum = Checksum(entry)

	writeCtx, cancel := context.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	if err := r.repo.Insert(writeCtx, entry); err != nil {
		return nil, fmt.Errorf("audit.Recorder.Record: %w", err)
	}

	// The entry is durably committed; everything below is best-effort.
	r.emitLog(ctx, entry)
	if r.publisher != nil {
		if err := r.publisher.PublishAudit(ctx, entry); err != nil {
			log.Warn().Err(err).Str("audit_id", entry.ID.String()).Msg("audit: publish failed")
		}
	}

	return entry, nil
}

func (r *Recorder) actorFor(ctx context.Context, explicit *domain.Actor) domain.Actor {
	if explicit != nil && explicit.Type.Valid() {
		return *explicit
	}
	return r.resolver.Resolve(ctx)
}

// sanitizeChanges drops denylisted field names from a diff map and
// sanitizes nested from/to values.
func (r *Recorder) sanitizeChanges(changes map[string]domain.Change) map[string]domain.Change {
	if changes == nil {
		return nil
	}
	out := make(map[string]domain.Change, len(changes))
	for k, c := range changes {
		if r.sanitizer.Denied(k) {
			continue
		}
		out[k] = domain.Change{
			From: r.sanitizer.Value(c.From),
			To:   r.sanitizer.Value(c.To),
		}
	}
	return out
}

// emitLog writes the correlated SystemLog summarizing a committed entry.
// Failure costs a convenience log line, not the compliance record, so it
// is logged at warning and dropped.
func (r *Recorder) emitLog(ctx context.Context, entry *domain.AuditEntry) {
	logCtx := map[string]any{
		"audit_id":    entry.ID.String(),
		"entity_type": entry.EntityType,
		"entity_id":   entry.EntityID,
	}

	who := domain.Actor{Type: entry.ActorType, ID: entry.ActorID, Email: entry.ActorEmail}
	req := eventlog.Request{
		EventType:  "audit." + strings.ToLower(entry.EntityType) + "." + string(entry.Action),
		Message:    fmt.Sprintf("%s '%s' %s", entry.EntityType, entry.EntityLabel, entry.Action.Label()),
		Context:    logCtx,
		TenantID:   entry.TenantID,
		TargetType: entry.EntityType,
		TargetID:   entry.EntityID,
		Actor:      &who,
	}

	if _, err := r.events.Record(ctx, req); err != nil {
		log.Warn().Err(err).Str("audit_id", entry.ID.String()).Msg("audit: correlated system log failed")
	}
}

// History returns the ordered audit trail for one entity.
func (r *Recorder) History(ctx context.Context, entityType, entityID string, limit, offset int) ([]*domain.AuditEntry, error) {
	entries, err := r.repo.ListByEntity(ctx, entityType, entityID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("audit.Recorder.History: %w", err)
	}
	return entries, nil
}

// Recent returns entries across all entities since the given time.
func (r *Recorder) Recent(ctx context.Context, since time.Time, limit int) ([]*domain.AuditEntry, error) {
	entries, err := r.repo.ListRecent(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("audit.Recorder.Recent: %w", err)
	}
	return entries, nil
}

// Summarize aggregates entry counts by action, entity type and actor type
// over the window starting at since.
func (r *Recorder) Summarize(ctx context.Context, since time.Time) (*domain.AuditSummary, error) {
	s, err := r.repo.Summarize(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("audit.Recorder.Summarize: %w", err)
	}
	return s, nil
}

// VerifyEntry fetches an entry and checks its checksum.
func (r *Recorder) VerifyEntry(ctx context.Context, id uuid.UUID) (*domain.AuditEntry, bool, error) {
	entry, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("audit.Recorder.VerifyEntry: %w", err)
	}
	return entry, Verify(entry), nil
}
