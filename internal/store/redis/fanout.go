package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/veritrail/traild/internal/domain"
)

// Fanout adapts PubSub to the recorder/logger publisher interfaces. Events
// carry identity and summary fields only; consumers wanting payloads fetch
// the row by id.
type Fanout struct {
	ps *PubSub
}

func NewFanout(ps *PubSub) *Fanout {
	return &Fanout{ps: ps}
}

type auditEvent struct {
	ID            string    `json:"id"`
	OccurredAt    time.Time `json:"occurred_at"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	EntityLabel   string    `json:"entity_label,omitempty"`
	ActorType     string    `json:"actor_type"`
	TenantID      string    `json:"tenant_id,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

type logEvent struct {
	ID            string    `json:"id"`
	OccurredAt    time.Time `json:"occurred_at"`
	EventType     string    `json:"event_type"`
	Severity      string    `json:"severity"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

func (f *Fanout) PublishAudit(ctx context.Context, entry *domain.AuditEntry) error {
	ev := auditEvent{
		ID:            entry.ID.String(),
		OccurredAt:    entry.OccurredAt,
		Action:        string(entry.Action),
		EntityType:    entry.EntityType,
		EntityID:      entry.EntityID,
		EntityLabel:   entry.EntityLabel,
		ActorType:     string(entry.ActorType),
		CorrelationID: entry.CorrelationID,
	}
	if entry.TenantID != nil {
		ev.TenantID = entry.TenantID.String()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis.Fanout.PublishAudit: marshal: %w", err)
	}

	if err := f.ps.Publish(ctx, ActivityChannel(), payload); err != nil {
		return fmt.Errorf("redis.Fanout.PublishAudit: %w", err)
	}
	if entry.TenantID != nil {
		if err := f.ps.Publish(ctx, TenantActivityChannel(*entry.TenantID), payload); err != nil {
			return fmt.Errorf("redis.Fanout.PublishAudit: tenant channel: %w", err)
		}
	}

	return nil
}

func (f *Fanout) PublishLog(ctx context.Context, entry *domain.SystemLog) error {
	payload, err := json.Marshal(logEvent{
		ID:            entry.ID.String(),
		OccurredAt:    entry.OccurredAt,
		EventType:     entry.EventType,
		Severity:      string(entry.Severity),
		Status:        string(entry.Status),
		Message:       entry.Message,
		CorrelationID: entry.CorrelationID,
	})
	if err != nil {
		return fmt.Errorf("redis.Fanout.PublishLog: marshal: %w", err)
	}

	if err := f.ps.Publish(ctx, LogChannel(), payload); err != nil {
		return fmt.Errorf("redis.Fanout.PublishLog: %w", err)
	}

	return nil
}
