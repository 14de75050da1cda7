package v1

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/veritrail/traild/internal/audit"
	"github.com/veritrail/traild/internal/domain"
	"github.com/veritrail/traild/internal/eventlog"
)

// AuditService abstracts the audit recorder for handler testing.
// *audit.Recorder satisfies this interface.
type AuditService interface {
	Record(ctx context.Context, req audit.Request) (*domain.AuditEntry, error)
	Updated(ctx context.Context, entityType, entityID, label string, original, current map[string]any, opts ...audit.Option) (*domain.AuditEntry, error)
	History(ctx context.Context, entityType, entityID string, limit, offset int) ([]*domain.AuditEntry, error)
	Recent(ctx context.Context, since time.Time, limit int) ([]*domain.AuditEntry, error)
	Summarize(ctx context.Context, since time.Time) (*domain.AuditSummary, error)
	VerifyEntry(ctx context.Context, id uuid.UUID) (*domain.AuditEntry, bool, error)
}

// LogService abstracts the event logger for handler testing.
// *eventlog.Logger satisfies this interface.
type LogService interface {
	Record(ctx context.Context, req eventlog.Request) (*domain.SystemLog, error)
	Timeline(ctx context.Context, correlationID string) ([]*domain.SystemLog, error)
	Summarize(ctx context.Context, since time.Time) (*domain.LogSummary, error)
}
