package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veritrail/traild/internal/domain"
)

// SystemLogRepo persists the operational event ledger. Rows are append-only;
// the sole delete path is the retention purge.
type SystemLogRepo struct {
	pool *pgxpool.Pool
}

func NewSystemLogRepo(pool *pgxpool.Pool) *SystemLogRepo {
	return &SystemLogRepo{pool: pool}
}

const systemLogColumns = `id, occurred_at, event_type, severity, status, actor_type, actor_id,
	 tenant_id, target_type, target_id, ip, user_agent, correlation_id, request_id,
	 message, context`

func (r *SystemLogRepo) Insert(ctx context.Context, entry *domain.SystemLog) error {
	logCtx, err := json.Marshal(entry.Context)
	if err != nil {
		return fmt.Errorf("systemLogRepo.Insert: marshal context: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO system_logs (`+systemLogColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		entry.ID, entry.OccurredAt, entry.EventType, entry.Severity, entry.Status,
		entry.ActorType, entry.ActorID, entry.TenantID, entry.TargetType, entry.TargetID,
		entry.IP, entry.UserAgent, entry.CorrelationID, entry.RequestID,
		entry.Message, logCtx,
	)
	if err != nil {
		return fmt.Errorf("systemLogRepo.Insert: %w", err)
	}

	return nil
}

// ListByCorrelation returns all rows of one logical operation, oldest
// first, so callers get a chronological timeline.
func (r *SystemLogRepo) ListByCorrelation(ctx context.Context, correlationID string) ([]*domain.SystemLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+systemLogColumns+` FROM system_logs
		 WHERE correlation_id = $1
		 ORDER BY occurred_at ASC`,
		correlationID,
	)
	if err != nil {
		return nil, fmt.Errorf("systemLogRepo.ListByCorrelation: %w", err)
	}
	defer rows.Close()

	return scanSystemLogs(rows, "systemLogRepo.ListByCorrelation")
}

func (r *SystemLogRepo) ListRecent(ctx context.Context, since time.Time, limit int) ([]*domain.SystemLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+systemLogColumns+` FROM system_logs
		 WHERE occurred_at >= $1
		 ORDER BY occurred_at DESC
		 LIMIT $2`,
		since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("systemLogRepo.ListRecent: %w", err)
	}
	defer rows.Close()

	return scanSystemLogs(rows, "systemLogRepo.ListRecent")
}

func (r *SystemLogRepo) Summarize(ctx context.Context, since time.Time) (*domain.LogSummary, error) {
	summary := &domain.LogSummary{
		BySeverity: make(map[domain.Severity]int64),
		ByCategory: make(map[string]int64),
	}

	rows, err := r.pool.Query(ctx,
		`SELECT severity, split_part(event_type, '.', 1), status, COUNT(*)
		 FROM system_logs
		 WHERE occurred_at >= $1
		 GROUP BY severity, split_part(event_type, '.', 1), status`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("systemLogRepo.Summarize: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			severity domain.Severity
			category string
			status   domain.LogStatus
			count    int64
		)
		if err = rows.Scan(&severity, &category, &status, &count); err != nil {
			return nil, fmt.Errorf("systemLogRepo.Summarize: scan: %w", err)
		}
		summary.Total += count
		summary.BySeverity[severity] += count
		summary.ByCategory[category] += count
		if status == domain.LogStatusFailed {
			summary.Failed += count
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("systemLogRepo.Summarize: rows: %w", err)
	}

	return summary, nil
}

// PurgeOlderThan deletes rows past the retention window and returns the
// number removed.
func (r *SystemLogRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM system_logs WHERE occurred_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("systemLogRepo.PurgeOlderThan: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanSystemLogs(rows pgx.Rows, caller string) ([]*domain.SystemLog, error) {
	var entries []*domain.SystemLog
	for rows.Next() {
		var (
			e      domain.SystemLog
			logCtx []byte
		)

		if err := rows.Scan(
			&e.ID, &e.OccurredAt, &e.EventType, &e.Severity, &e.Status,
			&e.ActorType, &e.ActorID, &e.TenantID, &e.TargetType, &e.TargetID,
			&e.IP, &e.UserAgent, &e.CorrelationID, &e.RequestID,
			&e.Message, &logCtx,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		if err := json.Unmarshal(logCtx, &e.Context); err != nil {
			return nil, fmt.Errorf("%s: unmarshal context: %w", caller, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return entries, nil
}
