// Package ws streams committed ledger events to connected clients, backed
// by the Redis fanout channels.
package ws

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/veritrail/traild/internal/server/middleware"
	redisstore "github.com/veritrail/traild/internal/store/redis"
)

// Hub manages WebSocket connections backed by Redis pub/sub.
type Hub struct {
	pubsub *redisstore.PubSub
}

// NewHub creates a new WebSocket hub.
func NewHub(pubsub *redisstore.PubSub) *Hub {
	return &Hub{pubsub: pubsub}
}

// ServeActivity streams every committed audit entry. Platform operators
// only: the firehose crosses tenant boundaries.
func (h *Hub) ServeActivity(w http.ResponseWriter, r *http.Request) {
	role, ok := middleware.RoleFromContext(r.Context())
	if !ok || role != "admin" {
		http.Error(w, "admin role required", http.StatusForbidden)
		return
	}

	h.stream(w, r, redisstore.ActivityChannel())
}

// ServeTenantActivity streams the audit entries of one tenant. Callers
// must belong to that tenant unless they are admins.
func (h *Hub) ServeTenantActivity(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		http.Error(w, "invalid tenant id", http.StatusBadRequest)
		return
	}

	role, _ := middleware.RoleFromContext(r.Context())
	if role != "admin" {
		ctxTenant, ok := middleware.TenantIDFromContext(r.Context())
		if !ok || ctxTenant != tenantID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	h.stream(w, r, redisstore.TenantActivityChannel(tenantID))
}

// ServeLogs streams committed system-log events. Admin only.
func (h *Hub) ServeLogs(w http.ResponseWriter, r *http.Request) {
	role, ok := middleware.RoleFromContext(r.Context())
	if !ok || role != "admin" {
		http.Error(w, "admin role required", http.StatusForbidden)
		return
	}

	h.stream(w, r, redisstore.LogChannel())
}

func (h *Hub) stream(w http.ResponseWriter, r *http.Request, channel string) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	messages, cleanup, err := h.pubsub.Subscribe(ctx, channel)
	if err != nil {
		log.Error().Err(err).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}

// Publish sends an event payload to a Redis channel. Convenience wrapper
// for callers that already hold the hub.
func (h *Hub) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := h.pubsub.Publish(ctx, channel, payload); err != nil {
		return fmt.Errorf("ws.Hub.Publish: %w", err)
	}
	return nil
}
