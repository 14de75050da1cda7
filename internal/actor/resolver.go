// Package actor infers the acting principal from ambient request/runtime
// context when a caller does not supply one explicitly.
package actor

import (
	"context"

	"github.com/google/uuid"

	"github.com/veritrail/traild/internal/domain"
)

type ctxKey string

const (
	keyScheduler ctxKey = "scheduler"
	keyUser      ctxKey = "user"
	keyPathClass ctxKey = "path_class"
)

// PathClass tags a request by route namespace so unauthenticated calls can
// still be attributed to the right principal type.
type PathClass string

const (
	PathAPI     PathClass = "api"
	PathWebhook PathClass = "webhook"
)

type userInfo struct {
	id    uuid.UUID
	email string
}

// WithScheduler marks ctx as belonging to a non-interactive scheduled job.
func WithScheduler(ctx context.Context) context.Context {
	return context.WithValue(ctx, keyScheduler, true)
}

// WithUser records the authenticated principal on ctx.
func WithUser(ctx context.Context, id uuid.UUID, email string) context.Context {
	return context.WithValue(ctx, keyUser, userInfo{id: id, email: email})
}

// WithPathClass records the route namespace class on ctx.
func WithPathClass(ctx context.Context, class PathClass) context.Context {
	return context.WithValue(ctx, keyPathClass, class)
}

// Resolver infers an Actor from ambient context. Stateless; a single
// instance is shared by the audit recorder and the event logger so the two
// cannot drift.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve applies the precedence order: scheduler context, then
// authenticated user, then API route, then webhook route, then system.
// First match wins; callers may always override with an explicit actor.
func (r *Resolver) Resolve(ctx context.Context) domain.Actor {
	if flag, _ := ctx.Value(keyScheduler).(bool); flag {
		return domain.Actor{Type: domain.ActorScheduler}
	}
	if u, ok := ctx.Value(keyUser).(userInfo); ok {
		id := u.id
		return domain.Actor{Type: domain.ActorUser, ID: &id, Email: u.email}
	}
	switch pc, _ := ctx.Value(keyPathClass).(PathClass); pc {
	case PathAPI:
		return domain.Actor{Type: domain.ActorAPI}
	case PathWebhook:
		return domain.Actor{Type: domain.ActorWebhook}
	}
	return domain.Actor{Type: domain.ActorSystem}
}
