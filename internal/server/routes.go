package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/veritrail/traild/internal/api/v1"
	"github.com/veritrail/traild/internal/api/ws"
	"github.com/veritrail/traild/internal/audit"
	"github.com/veritrail/traild/internal/eventlog"
)

func registerAPIRoutes(api huma.API, recorder *audit.Recorder, events *eventlog.Logger) {
	v1.RegisterAuditRoutes(api, recorder)
	v1.RegisterLogRoutes(api, events)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/activity", hub.ServeActivity)
	r.Get("/activity/{tenantID}", hub.ServeTenantActivity)
	r.Get("/logs", hub.ServeLogs)
}

func registerWebhookRoutes(r chi.Router, s *Server) {
	r.Post("/events", s.handleWebhookEvent)
}
