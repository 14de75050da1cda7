package v1_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/veritrail/traild/internal/audit"
	"github.com/veritrail/traild/internal/domain"
	"github.com/veritrail/traild/internal/eventlog"
	"github.com/veritrail/traild/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers — inject tenant/role into context for DoCtx
// ---------------------------------------------------------------------------

func adminCtx() context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyUserRole, "admin")
}

func memberCtx() context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyUserRole, "member")
}

// ---------------------------------------------------------------------------
// Mock AuditService
// ---------------------------------------------------------------------------

type mockAuditService struct {
	recordFunc      func(ctx context.Context, req audit.Request) (*domain.AuditEntry, error)
	updatedFunc     func(ctx context.Context, entityType, entityID, label string, original, current map[string]any, opts ...audit.Option) (*domain.AuditEntry, error)
	historyFunc     func(ctx context.Context, entityType, entityID string, limit, offset int) ([]*domain.AuditEntry, error)
	recentFunc      func(ctx context.Context, since time.Time, limit int) ([]*domain.AuditEntry, error)
	summarizeFunc   func(ctx context.Context, since time.Time) (*domain.AuditSummary, error)
	verifyEntryFunc func(ctx context.Context, id uuid.UUID) (*domain.AuditEntry, bool, error)
}

func (m *mockAuditService) Record(ctx context.Context, req audit.Request) (*domain.AuditEntry, error) {
	return m.recordFunc(ctx, req)
}

func (m *mockAuditService) Updated(ctx context.Context, entityType, entityID, label string, original, current map[string]any, opts ...audit.Option) (*domain.AuditEntry, error) {
	return m.updatedFunc(ctx, entityType, entityID, label, original, current, opts...)
}

func (m *mockAuditService) History(ctx context.Context, entityType, entityID string, limit, offset int) ([]*domain.AuditEntry, error) {
	return m.historyFunc(ctx, entityType, entityID, limit, offset)
}

func (m *mockAuditService) Recent(ctx context.Context, since time.Time, limit int) ([]*domain.AuditEntry, error) {
	return m.recentFunc(ctx, since, limit)
}

func (m *mockAuditService) Summarize(ctx context.Context, since time.Time) (*domain.AuditSummary, error) {
	return m.summarizeFunc(ctx, since)
}

func (m *mockAuditService) VerifyEntry(ctx context.Context, id uuid.UUID) (*domain.AuditEntry, bool, error) {
	return m.verifyEntryFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock LogService
// ---------------------------------------------------------------------------

type mockLogService struct {
	recordFunc    func(ctx context.Context, req eventlog.Request) (*domain.SystemLog, error)
	timelineFunc  func(ctx context.Context, correlationID string) ([]*domain.SystemLog, error)
	summarizeFunc func(ctx context.Context, since time.Time) (*domain.LogSummary, error)
}

func (m *mockLogService) Record(ctx context.Context, req eventlog.Request) (*domain.SystemLog, error) {
	return m.recordFunc(ctx, req)
}

func (m *mockLogService) Timeline(ctx context.Context, correlationID string) ([]*domain.SystemLog, error) {
	return m.timelineFunc(ctx, correlationID)
}

func (m *mockLogService) Summarize(ctx context.Context, since time.Time) (*domain.LogSummary, error) {
	return m.summarizeFunc(ctx, since)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func sampleEntry() *domain.AuditEntry {
	return &domain.AuditEntry{
		ID:         uuid.New(),
		OccurredAt: time.Now().UTC(),
		ActorType:  domain.ActorUser,
		Action:     domain.ActionSuspended,
		EntityType: "Tenant",
		EntityID:   "42",
		Checksum:   "abc123",
	}
}
