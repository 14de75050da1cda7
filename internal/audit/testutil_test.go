package audit_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/veritrail/traild/internal/actor"
	"github.com/veritrail/traild/internal/audit"
	"github.com/veritrail/traild/internal/domain"
	"github.com/veritrail/traild/internal/eventlog"
	"github.com/veritrail/traild/internal/redact"
)

// ---------------------------------------------------------------------------
// Mock AuditRepository
// ---------------------------------------------------------------------------

type mockAuditRepo struct {
	insertFunc       func(ctx context.Context, e *domain.AuditEntry) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.AuditEntry, error)
	listByEntityFunc func(ctx context.Context, entityType, entityID string, limit, offset int) ([]*domain.AuditEntry, error)
	listRecentFunc   func(ctx context.Context, since time.Time, limit int) ([]*domain.AuditEntry, error)
	summarizeFunc    func(ctx context.Context, since time.Time) (*domain.AuditSummary, error)
}

func (m *mockAuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	return m.insertFunc(ctx, e)
}

func (m *mockAuditRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AuditEntry, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockAuditRepo) ListByEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]*domain.AuditEntry, error) {
	return m.listByEntityFunc(ctx, entityType, entityID, limit, offset)
}

func (m *mockAuditRepo) ListRecent(ctx context.Context, since time.Time, limit int) ([]*domain.AuditEntry, error) {
	return m.listRecentFunc(ctx, since, limit)
}

func (m *mockAuditRepo) Summarize(ctx context.Context, since time.Time) (*domain.AuditSummary, error) {
	return m.summarizeFunc(ctx, since)
}

// ---------------------------------------------------------------------------
// Mock SystemLogRepository — backs the eventlog.Logger the recorder emits
// its correlated log through.
// ---------------------------------------------------------------------------

type mockLogRepo struct {
	insertFunc            func(ctx context.Context, e *domain.SystemLog) error
	listByCorrelationFunc func(ctx context.Context, correlationID string) ([]*domain.SystemLog, error)
	listRecentFunc        func(ctx context.Context, since time.Time, limit int) ([]*domain.SystemLog, error)
	summarizeFunc         func(ctx context.Context, since time.Time) (*domain.LogSummary, error)
	purgeOlderThanFunc    func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockLogRepo) Insert(ctx context.Context, e *domain.SystemLog) error {
	return m.insertFunc(ctx, e)
}

func (m *mockLogRepo) ListByCorrelation(ctx context.Context, correlationID string) ([]*domain.SystemLog, error) {
	return m.listByCorrelationFunc(ctx, correlationID)
}

func (m *mockLogRepo) ListRecent(ctx context.Context, since time.Time, limit int) ([]*domain.SystemLog, error) {
	return m.listRecentFunc(ctx, since, limit)
}

func (m *mockLogRepo) Summarize(ctx context.Context, since time.Time) (*domain.LogSummary, error) {
	return m.summarizeFunc(ctx, since)
}

func (m *mockLogRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.purgeOlderThanFunc(ctx, cutoff)
}

// ---------------------------------------------------------------------------
// Mock Publisher
// ---------------------------------------------------------------------------

type mockPublisher struct {
	publishAuditFunc func(ctx context.Context, e *domain.AuditEntry) error
}

func (m *mockPublisher) PublishAudit(ctx context.Context, e *domain.AuditEntry) error {
	return m.publishAuditFunc(ctx, e)
}

// ---------------------------------------------------------------------------
// Fixture wiring
// ---------------------------------------------------------------------------

// newRecorder wires a Recorder over the given mocks with the production
// resolver and sanitizer policies.
func newRecorder(auditRepo *mockAuditRepo, logRepo *mockLogRepo) *audit.Recorder {
	resolver := actor.NewResolver()
	events := eventlog.New(logRepo, resolver, redact.NewSanitizer(redact.LogPolicy()))
	return audit.New(auditRepo, events, resolver, redact.NewSanitizer(redact.AuditPolicy()))
}

// captureRepos returns mocks that accept every write and record the entries
// they saw.
func captureRepos() (*mockAuditRepo, *mockLogRepo, *[]*domain.AuditEntry, *[]*domain.SystemLog) {
	var entries []*domain.AuditEntry
	var logs []*domain.SystemLog

	auditRepo := &mockAuditRepo{
		insertFunc: func(_ context.Context, e *domain.AuditEntry) error {
			entries = append(entries, e)
			return nil
		},
	}
	logRepo := &mockLogRepo{
		insertFunc: func(_ context.Context, e *domain.SystemLog) error {
			logs = append(logs, e)
			return nil
		},
	}

	return auditRepo, logRepo, &entries, &logs
}
