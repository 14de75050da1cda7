package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/veritrail/traild/internal/domain"
	"github.com/veritrail/traild/internal/eventlog"
)

type webhookEvent struct {
	EventType  string         `json:"event_type"`
	Message    string         `json:"message"`
	Severity   string         `json:"severity,omitempty"`
	Status     string         `json:"status,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
	TenantID   *uuid.UUID     `json:"tenant_id,omitempty"`
	TargetType string         `json:"target_type,omitempty"`
	TargetID   string         `json:"target_id,omitempty"`
}

// handleWebhookEvent ingests operational events from external providers
// (billing, provisioning). Authenticated by shared secret; the actor
// resolves to webhook via the path classifier, no explicit actor needed.
func (s *Server) handleWebhookEvent(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("X-Webhook-Secret")
	if s.cfg.Webhook.Secret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.Webhook.Secret)) != 1 {
		http.Error(w, `{"title":"Unauthorized","status":401}`, http.StatusUnauthorized)
		return
	}

	var ev webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, `{"title":"Bad Request","status":400,"detail":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	entry, err := s.events.Record(r.Context(), eventlog.Request{
		EventType:  ev.EventType,
		Message:    ev.Message,
		Severity:   domain.Severity(ev.Severity),
		Status:     domain.LogStatus(ev.Status),
		Context:    ev.Context,
		TenantID:   ev.TenantID,
		TargetType: ev.TargetType,
		TargetID:   ev.TargetID,
	})
	if err != nil {
		log.Warn().Err(err).Str("event_type", ev.EventType).Msg("webhook: record failed")
		http.Error(w, `{"title":"Unprocessable Entity","status":422}`, http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": entry.ID.String()})
}
