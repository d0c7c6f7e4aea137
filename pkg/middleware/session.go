package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/pkg/logger"
)

const (
	sessionKey contextKeyType = "session_id"

	// SessionCookieName identifies the anonymous shopper owning a cart and wishlist.
	SessionCookieName = "user_session_id"

	sessionMaxAge = 365 * 24 * time.Hour
)

// Session ensures every request carries a shopper session id. A request
// without the user_session_id cookie gets a fresh one, set on the response
// for one year.
func Session(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string
			if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
				sessionID = c.Value
			} else {
				sessionID = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(sessionMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey, sessionID)
			ctx = logger.WithSessionID(ctx, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the shopper session id set by Session.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey).(string); ok {
		return id
	}
	return ""
}
