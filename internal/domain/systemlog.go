package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

type LogStatus string

const (
	LogStatusSuccess LogStatus = "success"
	LogStatusFailed  LogStatus = "failed"
)

// SystemLog is one immutable row of the operational event ledger. Broader
// than AuditEntry: it records any event, successful or failed, at any
// severity. Context is sanitized before write.
type SystemLog struct {
	ID            uuid.UUID      `json:"id"`
	OccurredAt    time.Time      `json:"occurred_at"`
	EventType     string         `json:"event_type"` // dot-namespaced, e.g. "tenant.suspended"
	Severity      Severity       `json:"severity"`
	Status        LogStatus      `json:"status"`
	ActorType     ActorType      `json:"actor_type"`
	ActorID       *uuid.UUID     `json:"actor_id,omitempty"`
	TenantID      *uuid.UUID     `json:"tenant_id,omitempty"`
	TargetType    string         `json:"target_type,omitempty"`
	TargetID      string         `json:"target_id,omitempty"`
	IP            string         `json:"ip,omitempty"`
	UserAgent     string         `json:"user_agent,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	RequestID     string         `json:"request_id,omitempty"`
	Message       string         `json:"message"`
	Context       map[string]any `json:"context,omitempty"`
}

// Category returns the first dot segment of the event type
// ("tenant.suspended" -> "tenant"). Empty event types yield "".
func (l *SystemLog) Category() string {
	if i := strings.IndexByte(l.EventType, '.'); i > 0 {
		return l.EventType[:i]
	}
	return l.EventType
}

// LogSummary aggregates log counts over a trailing time window.
type LogSummary struct {
	Total      int64              `json:"total"`
	BySeverity map[Severity]int64 `json:"by_severity"`
	ByCategory map[string]int64   `json:"by_category"`
	Failed     int64              `json:"failed"`
}

type SystemLogRepository interface {
	Insert(ctx context.Context, entry *SystemLog) error
	ListByCorrelation(ctx context.Context, correlationID string) ([]*SystemLog, error)
	ListRecent(ctx context.Context, since time.Time, limit int) ([]*SystemLog, error)
	Summarize(ctx context.Context, since time.Time) (*LogSummary, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
