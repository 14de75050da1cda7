// Package correlation carries the identifier that groups ledger records
// produced by one logical business operation. The id lives on the
// context.Context of that operation only, so concurrent requests can never
// contaminate each other.
package correlation

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// NewID returns a fresh correlation identifier.
func NewID() string {
	return uuid.NewString()
}

// Start derives a child context carrying a new correlation id and returns
// both. Records written with the child context inherit the id; the parent
// context is untouched.
func Start(ctx context.Context) (context.Context, string) {
	id := NewID()
	return With(ctx, id), id
}

// With derives a child context carrying a caller-supplied id. An empty id
// returns ctx unchanged.
func With(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the active correlation id, if any.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
