package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/veritrail/traild/internal/audit"
	"github.com/veritrail/traild/internal/domain"
	"github.com/veritrail/traild/internal/server/middleware"
)

type RecordAuditInput struct {
	Body struct {
		Action      string            `json:"action" minLength:"1" doc:"Action from the closed vocabulary (created, updated, suspended, ...)"`
		EntityType  string            `json:"entity_type" minLength:"1" maxLength:"128" doc:"Logical entity type, e.g. Tenant"`
		EntityID    string            `json:"entity_id" minLength:"1" maxLength:"128" doc:"Entity identifier (numeric or UUID)"`
		EntityLabel string            `json:"entity_label,omitempty" maxLength:"255" doc:"Human-readable entity name snapshot"`
		Before      map[string]any    `json:"before,omitempty" doc:"Attribute snapshot before the change"`
		After       map[string]any    `json:"after,omitempty" doc:"Attribute snapshot after the change"`
		Reason      string            `json:"reason,omitempty" maxLength:"1000" doc:"Compliance justification"`
		TenantID    *uuid.UUID        `json:"tenant_id,omitempty" doc:"Owning tenant; omit for platform-global entries"`
		Metadata    map[string]any    `json:"metadata,omitempty"`
	}
}

type RecordAuditOutput struct {
	Body *domain.AuditEntry
}

type EntityHistoryInput struct {
	EntityType string `path:"entityType" doc:"Logical entity type"`
	EntityID   string `path:"entityID" doc:"Entity identifier"`
	Limit      int    `query:"limit" minimum:"1" maximum:"200" default:"50" doc:"Max results"`
	Offset     int    `query:"offset" minimum:"0" default:"0" doc:"Offset for pagination"`
}

type EntityHistoryOutput struct {
	Body []*domain.AuditEntry
}

type RecentActivityInput struct {
	Days  int `query:"days" minimum:"1" maximum:"365" default:"7" doc:"Trailing window in days"`
	Limit int `query:"limit" minimum:"1" maximum:"500" default:"100" doc:"Max results"`
}

type RecentActivityOutput struct {
	Body []*domain.AuditEntry
}

type AuditSummaryInput struct {
	Days int `query:"days" minimum:"1" maximum:"365" default:"30" doc:"Trailing window in days"`
}

type AuditSummaryOutput struct {
	Body *domain.AuditSummary
}

type VerifyEntryInput struct {
	ID uuid.UUID `path:"id" doc:"Audit entry ID"`
}

type VerifyEntryOutput struct {
	Body struct {
		Entry *domain.AuditEntry `json:"entry"`
		Valid bool               `json:"valid" doc:"False when the stored row no longer matches its checksum"`
	}
}

func RegisterAuditRoutes(api huma.API, svc AuditService) {
	huma.Register(api, huma.Operation{
		OperationID: "record-audit-entry",
		Method:      http.MethodPost,
		Path:        "/audit/entries",
		Summary:     "Record an audit entry",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *RecordAuditInput) (*RecordAuditOutput, error) {
		action, ok := domain.ParseAction(input.Body.Action)
		if !ok {
			return nil, huma.Error422UnprocessableEntity("unknown action: " + input.Body.Action)
		}

		// Plain updates go through the diff path so the changes map and the
		// status_changed reclassification behave the same as in-process calls.
		if action == domain.ActionUpdated && input.Body.Before != nil && input.Body.After != nil {
			opts := updateOpts(input)
			entry, err := svc.Updated(ctx, input.Body.EntityType, input.Body.EntityID, input.Body.EntityLabel,
				input.Body.Before, input.Body.After, opts...)
			if err != nil {
				return nil, recordError(err)
			}
			return &RecordAuditOutput{Body: entry}, nil
		}

		entry, err := svc.Record(ctx, audit.Request{
			Action:      action,
			EntityType:  input.Body.EntityType,
			EntityID:    input.Body.EntityID,
			EntityLabel: input.Body.EntityLabel,
			Before:      input.Body.Before,
			After:       input.Body.After,
			Reason:      input.Body.Reason,
			TenantID:    input.Body.TenantID,
			Metadata:    input.Body.Metadata,
		})
		if err != nil {
			return nil, recordError(err)
		}

		return &RecordAuditOutput{Body: entry}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "entity-history",
		Method:      http.MethodGet,
		Path:        "/audit/entities/{entityType}/{entityID}",
		Summary:     "Ordered audit trail for one entity",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *EntityHistoryInput) (*EntityHistoryOutput, error) {
		entries, err := svc.History(ctx, input.EntityType, input.EntityID, input.Limit, input.Offset)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list entity history", err)
		}
		return &EntityHistoryOutput{Body: entries}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "recent-activity",
		Method:      http.MethodGet,
		Path:        "/audit/recent",
		Summary:     "Recent audit activity across all entities",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *RecentActivityInput) (*RecentActivityOutput, error) {
		since := time.Now().AddDate(0, 0, -input.Days)
		entries, err := svc.Recent(ctx, since, input.Limit)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list recent activity", err)
		}
		return &RecentActivityOutput{Body: entries}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "audit-summary",
		Method:      http.MethodGet,
		Path:        "/audit/summary",
		Summary:     "Counts by action, entity type and actor type",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *AuditSummaryInput) (*AuditSummaryOutput, error) {
		role, ok := middleware.RoleFromContext(ctx)
		if !ok || role != "admin" {
			return nil, huma.Error403Forbidden("admin role required")
		}

		since := time.Now().AddDate(0, 0, -input.Days)
		summary, err := svc.Summarize(ctx, since)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to summarize audit entries", err)
		}
		return &AuditSummaryOutput{Body: summary}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "verify-audit-entry",
		Method:      http.MethodGet,
		Path:        "/audit/entries/{id}/verify",
		Summary:     "Recompute and check an entry's tamper checksum",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *VerifyEntryInput) (*VerifyEntryOutput, error) {
		entry, valid, err := svc.VerifyEntry(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("audit entry not found")
			}
			return nil, huma.Error500InternalServerError("failed to verify audit entry", err)
		}

		out := &VerifyEntryOutput{}
		out.Body.Entry = entry
		out.Body.Valid = valid
		return out, nil
	})
}

func updateOpts(input *RecordAuditInput) []audit.Option {
	var opts []audit.Option
	if input.Body.Reason != "" {
		opts = append(opts, audit.WithReason(input.Body.Reason))
	}
	if input.Body.TenantID != nil {
		opts = append(opts, audit.WithTenant(*input.Body.TenantID))
	}
	if input.Body.Metadata != nil {
		opts = append(opts, audit.WithMetadata(input.Body.Metadata))
	}
	return opts
}

func recordError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnknownAction):
		return huma.Error422UnprocessableEntity("unknown action")
	case errors.Is(err, domain.ErrMissingEntity):
		return huma.Error422UnprocessableEntity("entity type and id are required")
	default:
		return huma.Error500InternalServerError("failed to record audit entry", err)
	}
}
