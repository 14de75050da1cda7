package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/veritrail/traild/internal/domain"
	"github.com/veritrail/traild/internal/eventlog"
	"github.com/veritrail/traild/internal/server/middleware"
)

type RecordLogInput struct {
	Body struct {
		EventType  string         `json:"event_type" minLength:"1" maxLength:"128" doc:"Dot-namespaced event type, e.g. tenant.suspended"`
		Message    string         `json:"message" minLength:"1" doc:"Human summary; truncated past 500 characters"`
		Severity   string         `json:"severity,omitempty" enum:"info,warning,error,critical" doc:"Defaults to info"`
		Status     string         `json:"status,omitempty" enum:"success,failed" doc:"Defaults to success"`
		Context    map[string]any `json:"context,omitempty" doc:"Structured payload; sanitized before storage"`
		TenantID   *uuid.UUID     `json:"tenant_id,omitempty"`
		TargetType string         `json:"target_type,omitempty" maxLength:"128"`
		TargetID   string         `json:"target_id,omitempty" maxLength:"128"`
	}
}

type RecordLogOutput struct {
	Body *domain.SystemLog
}

type TimelineInput struct {
	CorrelationID string `path:"correlationID" doc:"Correlation ID shared by one logical operation"`
}

type TimelineOutput struct {
	Body []*domain.SystemLog
}

type LogSummaryInput struct {
	Days int `query:"days" minimum:"1" maximum:"365" default:"7" doc:"Trailing window in days"`
}

type LogSummaryOutput struct {
	Body *domain.LogSummary
}

func RegisterLogRoutes(api huma.API, svc LogService) {
	huma.Register(api, huma.Operation{
		OperationID: "record-system-log",
		Method:      http.MethodPost,
		Path:        "/logs",
		Summary:     "Record a system log event",
		Tags:        []string{"Logs"},
	}, func(ctx context.Context, input *RecordLogInput) (*RecordLogOutput, error) {
		entry, err := svc.Record(ctx, eventlog.Request{
			EventType:  input.Body.EventType,
			Message:    input.Body.Message,
			Severity:   domain.Severity(input.Body.Severity),
			Status:     domain.LogStatus(input.Body.Status),
			Context:    input.Body.Context,
			TenantID:   input.Body.TenantID,
			TargetType: input.Body.TargetType,
			TargetID:   input.Body.TargetID,
		})
		if err != nil {
			if errors.Is(err, eventlog.ErrMissingEventType) || errors.Is(err, eventlog.ErrInvalidSeverity) {
				return nil, huma.Error422UnprocessableEntity(err.Error())
			}
			return nil, huma.Error500InternalServerError("failed to record system log", err)
		}
		return &RecordLogOutput{Body: entry}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "correlation-timeline",
		Method:      http.MethodGet,
		Path:        "/logs/correlation/{correlationID}",
		Summary:     "All log entries of one logical operation, oldest first",
		Tags:        []string{"Logs"},
	}, func(ctx context.Context, input *TimelineInput) (*TimelineOutput, error) {
		entries, err := svc.Timeline(ctx, input.CorrelationID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load correlation timeline", err)
		}
		return &TimelineOutput{Body: entries}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "log-summary",
		Method:      http.MethodGet,
		Path:        "/logs/summary",
		Summary:     "Counts by severity, category and failure",
		Tags:        []string{"Logs"},
	}, func(ctx context.Context, input *LogSummaryInput) (*LogSummaryOutput, error) {
		role, ok := middleware.RoleFromContext(ctx)
		if !ok || role != "admin" {
			return nil, huma.Error403Forbidden("admin role required")
		}

		since := time.Now().AddDate(0, 0, -input.Days)
		summary, err := svc.Summarize(ctx, since)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to summarize system logs", err)
		}
		return &LogSummaryOutput{Body: summary}, nil
	})
}
