package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKeyType string

const (
	emailKey contextKeyType = "email"

	// AuthCookieName is the cookie carrying the signed dashboard token.
	AuthCookieName = "auth_token"
)

// Claims is what a validated auth token resolves to.
type Claims struct {
	Email string `json:"email"`
}

// TokenValidator validates a token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// Auth rejects requests that carry no valid auth token. The token is read from
// the auth_token cookie first and from a Bearer Authorization header second.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeAuthError(w, "Unauthorized")
				return
			}

			claims, err := validate(token)
			if err != nil {
				writeAuthError(w, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), emailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AuthCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// EmailFromContext returns the authenticated email, or "" outside Auth.
func EmailFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(emailKey).(string); ok {
		return email
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, message string) {
	writeErrorJSON(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}
