package eventlog_test

import (
	"context"
	"time"

	"github.com/veritrail/traild/internal/actor"
	"github.com/veritrail/traild/internal/domain"
	"github.com/veritrail/traild/internal/eventlog"
	"github.com/veritrail/traild/internal/redact"
)

// ---------------------------------------------------------------------------
// Mock SystemLogRepository
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
// Mock Alerter / Publisher
// ---------------------------------------------------------------------------

type mockAlerter struct {
	criticalEventFunc func(ctx context.Context, e *domain.SystemLog) error
}

func (m *mockAlerter) CriticalEvent(ctx context.Context, e *domain.SystemLog) error {
	return m.criticalEventFunc(ctx, e)
}

type mockLogPublisher struct {
	publishLogFunc func(ctx context.Context, e *domain.SystemLog) error
}

func (m *mockLogPublisher) PublishLog(ctx context.Context, e *domain.SystemLog) error {
	return m.publishLogFunc(ctx, e)
}

// ---------------------------------------------------------------------------
// Fixture wiring
// ---------------------------------------------------------------------------

func newLogger(repo *mockLogRepo) *eventlog.Logger {
	return eventlog.New(repo, actor.NewResolver(), redact.NewSanitizer(redact.LogPolicy()))
}

func captureRepo() (*mockLogRepo, *[]*domain.SystemLog) {
	var logs []*domain.SystemLog
	repo := &mockLogRepo{
		insertFunc: func(_ context.Context, e *domain.SystemLog) error {
			logs = append(logs, e)
			return nil
		},
	}
	return repo, &logs
}
