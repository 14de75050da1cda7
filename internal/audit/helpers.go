package audit

import (
	"context"
	"fmt"

	"github.com/veritrail/traild/internal/diff"
	"github.com/veritrail/traild/internal/domain"
)

// Created records a generic creation: an after snapshot only, no diff.
func (r *Recorder) Created(ctx context.Context, entityType, entityID, label string, attrs map[string]any, opts ...Option) (*domain.AuditEntry, error) {
	req := Request{
		Action:      domain.ActionCreated,
		EntityType:  entityType,
		EntityID:    entityID,
		EntityLabel: label,
		After:       attrs,
	}
	applyOpts(&req, opts)
	return r.Record(ctx, req)
}

// Updated records a generic update. The diff is computed here from the
// caller-supplied snapshots; if nothing changed beyond housekeeping fields
// no entry is written and (nil, nil) is returned. A diff touching the
// status field reclassifies the action to status_changed unless the caller
// forced one via WithAction.
func (r *Recorder) Updated(ctx context.Context, entityType, entityID, label string, original, current map[string]any, opts ...Option) (*domain.AuditEntry, error) {
	changes := diff.Changes(original, current)
	if len(changes) == 0 {
		return nil, nil
	}

	req := Request{
		Action:      domain.ActionUpdated,
		EntityType:  entityType,
		EntityID:    entityID,
		EntityLabel: label,
		Changes:     changes,
		Before:      original,
		After:       current,
	}
	applyOpts(&req, opts)
	// Only reclassify when the caller did not force an action.
	if _, statusChanged := changes["status"]; statusChanged && req.Action == domain.ActionUpdated {
		req.Action = domain.ActionStatusChanged
	}
	return r.Record(ctx, req)
}

// Deleted records a generic deletion: a before snapshot only.
func (r *Recorder) Deleted(ctx context.Context, entityType, entityID, label string, attrs map[string]any, opts ...Option) (*domain.AuditEntry, error) {
	req := Request{
		Action:      domain.ActionDeleted,
		EntityType:  entityType,
		EntityID:    entityID,
		EntityLabel: label,
		Before:      attrs,
	}
	applyOpts(&req, opts)
	return r.Record(ctx, req)
}

// TenantSuspended records a tenant suspension with the compliance reason.
func (r *Recorder) TenantSuspended(ctx context.Context, tenantID, name, reason string, opts ...Option) (*domain.AuditEntry, error) {
	req := Request{
		Action:      domain.ActionSuspended,
		EntityType:  "Tenant",
		EntityID:    tenantID,
		EntityLabel: name,
		Reason:      reason,
		Changes: map[string]domain.Change{
			"status": {From: "active", To: "suspended"},
		},
	}
	applyOpts(&req, opts)
	return r.Record(ctx, req)
}

// TenantReactivated records a tenant coming back from suspension.
func (r *Recorder) TenantReactivated(ctx context.Context, tenantID, name string, opts ...Option) (*domain.AuditEntry, error) {
	req := Request{
		Action:      domain.ActionReactivated,
		EntityType:  "Tenant",
		EntityID:    tenantID,
		EntityLabel: name,
		Changes: map[string]domain.Change{
			"status": {From: "suspended", To: "active"},
		},
	}
	applyOpts(&req, opts)
	return r.Record(ctx, req)
}

// PlanRef identifies one side of a plan change.
type PlanRef struct {
	ID         string
	Name       string
	PriceCents int64
}

// PlanChanged records a subscription moving between plans, carrying both
// plan ids, names and prices.
func (r *Recorder) PlanChanged(ctx context.Context, subscriptionID, label string, from, to PlanRef, opts ...Option) (*domain.AuditEntry, error) {
	req := Request{
		Action:      domain.ActionPlanChanged,
		EntityType:  "Subscription",
		EntityID:    subscriptionID,
		EntityLabel: label,
		Changes: map[string]domain.Change{
			"plan_id":          {From: from.ID, To: to.ID},
			"plan_name":        {From: from.Name, To: to.Name},
			"plan_price_cents": {From: from.PriceCents, To: to.PriceCents},
		},
	}
	applyOpts(&req, opts)
	return r.Record(ctx, req)
}

// RoleAssigned records a role change on a user.
func (r *Recorder) RoleAssigned(ctx context.Context, userID, email, fromRole, toRole string, opts ...Option) (*domain.AuditEntry, error) {
	req := Request{
		Action:      domain.ActionRoleAssigned,
		EntityType:  "User",
		EntityID:    userID,
		EntityLabel: email,
		Changes: map[string]domain.Change{
			"role": {From: fromRole, To: toRole},
		},
	}
	applyOpts(&req, opts)
	return r.Record(ctx, req)
}

// MFAEnabled records multi-factor auth being turned on for a user.
func (r *Recorder) MFAEnabled(ctx context.Context, userID, email string, opts ...Option) (*domain.AuditEntry, error) {
	return r.mfaToggled(ctx, userID, email, true, opts)
}

// MFADisabled records multi-factor auth being turned off for a user.
func (r *Recorder) MFADisabled(ctx context.Context, userID, email string, opts ...Option) (*domain.AuditEntry, error) {
	return r.mfaToggled(ctx, userID, email, false, opts)
}

func (r *Recorder) mfaToggled(ctx context.Context, userID, email string, enabled bool, opts []Option) (*domain.AuditEntry, error) {
	action := domain.ActionMFADisabled
	if enabled {
		action = domain.ActionMFAEnabled
	}
	req := Request{
		Action:      action,
		EntityType:  "User",
		EntityID:    userID,
		EntityLabel: email,
		Changes: map[string]domain.Change{
			"mfa_enabled": {From: !enabled, To: enabled},
		},
	}
	applyOpts(&req, opts)
	return r.Record(ctx, req)
}

// TrialExtended records a trial extension, carrying the day count.
func (r *Recorder) TrialExtended(ctx context.Context, subscriptionID, label string, days int, opts ...Option) (*domain.AuditEntry, error) {
	req := Request{
		Action:      domain.ActionTrialExtended,
		EntityType:  "Subscription",
		EntityID:    subscriptionID,
		EntityLabel: label,
		Metadata:    map[string]any{"extension_days": days},
	}
	applyOpts(&req, opts)
	return r.Record(ctx, req)
}

// DomainAdded records a custom domain being attached to a tenant.
func (r *Recorder) DomainAdded(ctx context.Context, tenantID, name, domainName string, opts ...Option) (*domain.AuditEntry, error) {
	req := Request{
		Action:      domain.ActionDomainAdded,
		EntityType:  "Tenant",
		EntityID:    tenantID,
		EntityLabel: name,
		Changes: map[string]domain.Change{
			"domain": {From: nil, To: domainName},
		},
	}
	applyOpts(&req, opts)
	return r.Record(ctx, req)
}

// PaymentRefunded records a refund, carrying the amount in cents plus a
// formatted decimal string in metadata.
func (r *Recorder) PaymentRefunded(ctx context.Context, paymentID, label string, amountCents int64, currency string, opts ...Option) (*domain.AuditEntry, error) {
	req := Request{
		Action:      domain.ActionRefunded,
		EntityType:  "Payment",
		EntityID:    paymentID,
		EntityLabel: label,
		Metadata: map[string]any{
			"amount_cents":     amountCents,
			"currency":         currency,
			"amount_formatted": formatCents(amountCents),
		},
	}
	applyOpts(&req, opts)
	return r.Record(ctx, req)
}

// APIKeyRotated records an AI-service or platform API key rotation. Key
// material itself never appears here; only the key's identity does.
func (r *Recorder) APIKeyRotated(ctx context.Context, keyID, label string, opts ...Option) (*domain.AuditEntry, error) {
	req := Request{
		Action:      domain.ActionKeyRotated,
		EntityType:  "ApiKey",
		EntityID:    keyID,
		EntityLabel: label,
	}
	applyOpts(&req, opts)
	return r.Record(ctx, req)
}

func applyOpts(req *Request, opts []Option) {
	for _, opt := range opts {
		opt(req)
	}
}

// formatCents renders a cent amount as a decimal string, e.g. 5000 -> "50.00".
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
