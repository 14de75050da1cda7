// Package requestmeta carries per-request transport metadata (ip, user
// agent, request id) on the context so ledger writers can stamp records
// without threading parameters through every call site.
package requestmeta

import "context"

type ctxKey struct{}

// Meta is the transport metadata captured by the HTTP middleware.
type Meta struct {
	IP        string
	UserAgent string
	RequestID string
}

// With derives a child context carrying m.
func With(ctx context.Context, m Meta) context.Context {
	return context.WithValue(ctx, ctxKey{}, m)
}

// FromContext returns the request metadata, zero-valued when absent.
func FromContext(ctx context.Context) Meta {
	m, _ := ctx.Value(ctxKey{}).(Meta)
	return m
}
