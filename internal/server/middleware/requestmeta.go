package middleware

import (
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/veritrail/traild/internal/actor"
	"github.com/veritrail/traild/internal/correlation"
	"github.com/veritrail/traild/internal/requestmeta"
)

// CorrelationHeader lets upstream services thread one logical operation
// through several requests.
const CorrelationHeader = "X-Correlation-ID"

// Metadata captures transport metadata, classifies the route namespace for
// actor resolution, and establishes the request's correlation id. Must run
// after chi's RequestID and RealIP middleware.
func Metadata() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ctx = requestmeta.With(ctx, requestmeta.Meta{
				IP:        r.RemoteAddr,
				UserAgent: r.UserAgent(),
				RequestID: chimw.GetReqID(ctx),
			})

			switch {
			case strings.HasPrefix(r.URL.Path, "/webhooks/"):
				ctx = actor.WithPathClass(ctx, actor.PathWebhook)
			case strings.HasPrefix(r.URL.Path, "/api/"):
				ctx = actor.WithPathClass(ctx, actor.PathAPI)
			}

			if id := r.Header.Get(CorrelationHeader); id != "" {
				ctx = correlation.With(ctx, id)
			} else {
				ctx, _ = correlation.Start(ctx)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
