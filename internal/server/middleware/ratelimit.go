package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// keyedLimiters tracks one token bucket per key (tenant id, client ip) and
// evicts stale entries so the map cannot grow without bound.
type keyedLimiters[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*limiterEntry
	rps     float64
	burst   int
}

func newKeyedLimiters[K comparable](ctx context.Context, rps float64, burst int) *keyedLimiters[K] {
	kl := &keyedLimiters[K]{
		entries: make(map[K]*limiterEntry),
		rps:     rps,
		burst:   burst,
	}

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				kl.mu.Lock()
				cutoff := time.Now().Add(-30 * time.Minute)
				for k, e := range kl.entries {
					if e.lastAccess.Before(cutoff) {
						delete(kl.entries, k)
					}
				}
				kl.mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	return kl
}

func (kl *keyedLimiters[K]) limiterFor(key K) *rate.Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	e, ok := kl.entries[key]
	if !ok {
		e = &limiterEntry{
			limiter:    rate.NewLimiter(rate.Limit(kl.rps), kl.burst),
			lastAccess: time.Now(),
		}
		kl.entries[key] = e
	} else {
		e.lastAccess = time.Now()
	}
	return e.limiter
}

// RateLimit applies per-tenant rate limiting on the authenticated query
// API. Requests without a tenant in context (platform operators) are not
// limited here.
func RateLimit(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	limiters := newKeyedLimiters[uuid.UUID](ctx, requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, ok := TenantIDFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if !limiters.limiterFor(tenantID).Allow() {
				http.Error(w, `{"title":"Too Many Requests","status":429,"detail":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP applies per-IP rate limiting on unauthenticated endpoints
// (the webhook ingest path). Relies on chi's RealIP running first.
func RateLimitByIP(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	limiters := newKeyedLimiters[string](ctx, requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.limiterFor(r.RemoteAddr).Allow() {
				http.Error(w, `{"title":"Too Many Requests","status":429,"detail":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
