package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Change holds the before/after pair for a single field in an audit diff.
type Change struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// AuditEntry is one immutable row of the entity-change ledger. The checksum
// is computed over the write-once fields before insert; no update path
// exists for entries, and actor/tenant references are soft (nulled on
// principal deletion, never cascaded).
type AuditEntry struct {
	ID            uuid.UUID         `json:"id"`
	OccurredAt    time.Time         `json:"occurred_at"`
	ActorType     ActorType         `json:"actor_type"`
	ActorID       *uuid.UUID        `json:"actor_id,omitempty"`
	ActorEmail    string            `json:"actor_email,omitempty"` // snapshot at event time, survives account changes
	Action        Action            `json:"action"`
	EntityType    string            `json:"entity_type"`
	EntityID      string            `json:"entity_id"` // string so numeric and UUID-keyed entities both fit
	EntityLabel   string            `json:"entity_label,omitempty"` // human-readable snapshot, independent of renames
	TenantID      *uuid.UUID        `json:"tenant_id,omitempty"`
	IP            string            `json:"ip,omitempty"`
	UserAgent     string            `json:"user_agent,omitempty"`
	RequestID     string            `json:"request_id,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	Changes       map[string]Change `json:"changes,omitempty"`
	Before        map[string]any    `json:"before,omitempty"`
	After         map[string]any    `json:"after,omitempty"`
	Checksum      string            `json:"checksum"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
}

// AuditSummary aggregates entry counts over a trailing time window.
type AuditSummary struct {
	Total        int64               `json:"total"`
	ByAction     map[Action]int64    `json:"by_action"`
	ByEntityType map[string]int64    `json:"by_entity_type"`
	ByActorType  map[ActorType]int64 `json:"by_actor_type"`
}

type AuditRepository interface {
	Insert(ctx context.Context, entry *AuditEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*AuditEntry, error)
	ListByEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]*AuditEntry, error)
	ListRecent(ctx context.Context, since time.Time, limit int) ([]*AuditEntry, error)
	Summarize(ctx context.Context, since time.Time) (*AuditSummary, error)
}
