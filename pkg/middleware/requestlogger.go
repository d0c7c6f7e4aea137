package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/pkg/logger"
)

// RequestLogger stores a request-scoped logger in context, enriched with
// correlation_id, session_id, trace_id and span_id. Handlers retrieve it with
// logger.FromContext(ctx).
//
// Mount it after RequestLogging, Tracing and Session.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if logger.SessionIDFromContext(ctx) == "" {
				if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
					ctx = logger.WithSessionID(ctx, c.Value)
				}
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
