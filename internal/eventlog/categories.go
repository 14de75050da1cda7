package eventlog

import (
	"context"

	"github.com/veritrail/traild/internal/domain"
)

// eventClass fixes the severity and status for a known event type. The
// table is explicit on purpose: severity is never inferred from action
// names at runtime.
type eventClass struct {
	severity domain.Severity
	status   domain.LogStatus
}

var eventClasses = map[string]eventClass{
	"auth.login.failed":                {domain.SeverityWarning, domain.LogStatusFailed},
	"auth.mfa.failed":                  {domain.SeverityWarning, domain.LogStatusFailed},
	"auth.lockout":                     {domain.SeverityWarning, domain.LogStatusSuccess},
	"auth.password_reset.failed":       {domain.SeverityWarning, domain.LogStatusFailed},
	"tenant.suspended":                 {domain.SeverityWarning, domain.LogStatusSuccess},
	"tenant.provision.failed":          {domain.SeverityError, domain.LogStatusFailed},
	"tenant.deleted":                   {domain.SeverityWarning, domain.LogStatusSuccess},
	"subscription.payment_overdue":     {domain.SeverityWarning, domain.LogStatusSuccess},
	"subscription.usage_limit.reached": {domain.SeverityWarning, domain.LogStatusSuccess},
	"subscription.cancelled":           {domain.SeverityWarning, domain.LogStatusSuccess},
	"billing.payment.failed":           {domain.SeverityError, domain.LogStatusFailed},
	"billing.refund.failed":            {domain.SeverityError, domain.LogStatusFailed},
	"billing.chargeback":               {domain.SeverityWarning, domain.LogStatusSuccess},
	"billing.webhook.invalid":          {domain.SeverityWarning, domain.LogStatusFailed},
	"admin.impersonation.started":      {domain.SeverityWarning, domain.LogStatusSuccess},
	"ai.request.failed":                {domain.SeverityError, domain.LogStatusFailed},
	"ai.quota.exceeded":                {domain.SeverityWarning, domain.LogStatusSuccess},
	"ai.key.invalid":                   {domain.SeverityError, domain.LogStatusFailed},
	"system.health.degraded":           {domain.SeverityWarning, domain.LogStatusSuccess},
	"system.health.down":               {domain.SeverityCritical, domain.LogStatusFailed},
	"plan.sync.failed":                 {domain.SeverityError, domain.LogStatusFailed},
}

func classify(eventType string) (domain.Severity, domain.LogStatus) {
	if c, ok := eventClasses[eventType]; ok {
		return c.severity, c.status
	}
	return domain.SeverityInfo, domain.LogStatusSuccess
}

func (l *Logger) category(ctx context.Context, prefix, action, message string, logCtx map[string]any, opts []Option) (*domain.SystemLog, error) {
	eventType := prefix + "." + action
	severity, status := classify(eventType)
	req := Request{
		EventType: eventType,
		Message:   message,
		Severity:  severity,
		Status:    status,
		Context:   logCtx,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return l.Record(ctx, req)
}

// Category helpers. Each fixes the event-type prefix and looks severity and
// status up in the table above.

func (l *Logger) Auth(ctx context.Context, action, message string, logCtx map[string]any, opts ...Option) (*domain.SystemLog, error) {
	return l.category(ctx, "auth", action, message, logCtx, opts)
}

func (l *Logger) Tenant(ctx context.Context, action, message string, logCtx map[string]any, opts ...Option) (*domain.SystemLog, error) {
	return l.category(ctx, "tenant", action, message, logCtx, opts)
}

func (l *Logger) Subscription(ctx context.Context, action, message string, logCtx map[string]any, opts ...Option) (*domain.SystemLog, error) {
	return l.category(ctx, "subscription", action, message, logCtx, opts)
}

func (l *Logger) Billing(ctx context.Context, action, message string, logCtx map[string]any, opts ...Option) (*domain.SystemLog, error) {
	return l.category(ctx, "billing", action, message, logCtx, opts)
}

func (l *Logger) Admin(ctx context.Context, action, message string, logCtx map[string]any, opts ...Option) (*domain.SystemLog, error) {
	return l.category(ctx, "admin", action, message, logCtx, opts)
}

func (l *Logger) AI(ctx context.Context, action, message string, logCtx map[string]any, opts ...Option) (*domain.SystemLog, error) {
	return l.category(ctx, "ai", action, message, logCtx, opts)
}

func (l *Logger) System(ctx context.Context, action, message string, logCtx map[string]any, opts ...Option) (*domain.SystemLog, error) {
	return l.category(ctx, "system", action, message, logCtx, opts)
}

func (l *Logger) Plan(ctx context.Context, action, message string, logCtx map[string]any, opts ...Option) (*domain.SystemLog, error) {
	return l.category(ctx, "plan", action, message, logCtx, opts)
}

// Error records an event at error severity with failed status regardless
// of the mapping table.
func (l *Logger) Error(ctx context.Context, eventType, message string, logCtx map[string]any, opts ...Option) (*domain.SystemLog, error) {
	req := Request{
		EventType: eventType,
		Message:   message,
		Severity:  domain.SeverityError,
		Status:    domain.LogStatusFailed,
		Context:   logCtx,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return l.Record(ctx, req)
}

// Critical records an event at critical severity with failed status.
// Triggers the alerter when one is configured.
func (l *Logger) Critical(ctx context.Context, eventType, message string, logCtx map[string]any, opts ...Option) (*domain.SystemLog, error) {
	req := Request{
		EventType: eventType,
		Message:   message,
		Severity:  domain.SeverityCritical,
		Status:    domain.LogStatusFailed,
		Context:   logCtx,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return l.Record(ctx, req)
}
