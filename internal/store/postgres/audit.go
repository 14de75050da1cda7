package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veritrail/traild/internal/domain"
)

// AuditRepo persists the entity-change ledger. Entries are append-only:
// there is deliberately no UPDATE or DELETE statement in this file.
type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

const auditColumns = `id, occurred_at, actor_type, actor_id, actor_email, action,
	 entity_type, entity_id, entity_label, tenant_id, ip, user_agent,
	 request_id, correlation_id, reason, changes, before, after, checksum, metadata`

func (r *AuditRepo) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return fmt.Errorf("auditRepo.Insert: marshal changes: %w", err)
	}
	before, err := json.Marshal(entry.Before)
	if err != nil {
		return fmt.Errorf("auditRepo.Insert: marshal before: %w", err)
	}
	after, err := json.Marshal(entry.After)
	if err != nil {
		return fmt.Errorf("auditRepo.Insert: marshal after: %w", err)
	}
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("auditRepo.Insert: marshal metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_entries (`+auditColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		entry.ID, entry.OccurredAt, entry.ActorType, entry.ActorID, entry.ActorEmail,
		entry.Action, entry.EntityType, entry.EntityID, entry.EntityLabel, entry.TenantID,
		entry.IP, entry.UserAgent, entry.RequestID, entry.CorrelationID, entry.Reason,
		changes, before, after, entry.Checksum, metadata,
	)
	if err != nil {
		return fmt.Errorf("auditRepo.Insert: %w", err)
	}

	return nil
}

func (r *AuditRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+auditColumns+` FROM audit_entries WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.GetByID: %w", err)
	}
	defer rows.Close()

	entries, err := scanAuditEntries(rows, "auditRepo.GetByID")
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("auditRepo.GetByID: %w", domain.ErrNotFound)
	}
	return entries[0], nil
}

func (r *AuditRepo) ListByEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]*domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+auditColumns+` FROM audit_entries
		 WHERE entity_type = $1 AND entity_id = $2
		 ORDER BY occurred_at DESC
		 LIMIT $3 OFFSET $4`,
		entityType, entityID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.ListByEntity: %w", err)
	}
	defer rows.Close()

	return scanAuditEntries(rows, "auditRepo.ListByEntity")
}

func (r *AuditRepo) ListRecent(ctx context.Context, since time.Time, limit int) ([]*domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+auditColumns+` FROM audit_entries
		 WHERE occurred_at >= $1
		 ORDER BY occurred_at DESC
		 LIMIT $2`,
		since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.ListRecent: %w", err)
	}
	defer rows.Close()

	return scanAuditEntries(rows, "auditRepo.ListRecent")
}

func (r *AuditRepo) Summarize(ctx context.Context, since time.Time) (*domain.AuditSummary, error) {
	summary := &domain.AuditSummary{
		ByAction:     make(map[domain.Action]int64),
		ByEntityType: make(map[string]int64),
		ByActorType:  make(map[domain.ActorType]int64),
	}

	rows, err := r.pool.Query(ctx,
		`SELECT action, entity_type, actor_type, COUNT(*)
		 FROM audit_entries
		 WHERE occurred_at >= $1
		 GROUP BY action, entity_type, actor_type`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.Summarize: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			action     domain.Action
			entityType string
			actorType  domain.ActorType
			count      int64
		)
		if err = rows.Scan(&action, &entityType, &actorType, &count); err != nil {
			return nil, fmt.Errorf("auditRepo.Summarize: scan: %w", err)
		}
		summary.Total += count
		summary.ByAction[action] += count
		summary.ByEntityType[entityType] += count
		summary.ByActorType[actorType] += count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("auditRepo.Summarize: rows: %w", err)
	}

	return summary, nil
}

func scanAuditEntries(rows pgx.Rows, caller string) ([]*domain.AuditEntry, error) {
	var entries []*domain.AuditEntry
	for rows.Next() {
		var (
			e        domain.AuditEntry
			changes  []byte
			before   []byte
			after    []byte
			metadata []byte
		)

		if err := rows.Scan(
			&e.ID, &e.OccurredAt, &e.ActorType, &e.ActorID, &e.ActorEmail, &e.Action,
			&e.EntityType, &e.EntityID, &e.EntityLabel, &e.TenantID, &e.IP, &e.UserAgent,
			&e.RequestID, &e.CorrelationID, &e.Reason, &changes, &before, &after,
			&e.Checksum, &metadata,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		if err := json.Unmarshal(changes, &e.Changes); err != nil {
			return nil, fmt.Errorf("%s: unmarshal changes: %w", caller, err)
		}
		if err := json.Unmarshal(before, &e.Before); err != nil {
			return nil, fmt.Errorf("%s: unmarshal before: %w", caller, err)
		}
		if err := json.Unmarshal(after, &e.After); err != nil {
			return nil, fmt.Errorf("%s: unmarshal after: %w", caller, err)
		}
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return nil, fmt.Errorf("%s: unmarshal metadata: %w", caller, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return entries, nil
}
