package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists origins that may call the API. "*" allows any.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string

	// MaxAge is how long in seconds a preflight may be cached.
	MaxAge int

	// AllowCredentials lets browsers send the session and auth cookies. With
	// a wildcard origin the request origin is echoed instead of "*".
	AllowCredentials bool
}

// DefaultCORSConfig lets a storefront page on any origin use its cookies.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		MaxAge:           3600,
		AllowCredentials: true,
	}
}

// CORS answers preflight requests and sets Access-Control headers on the rest.
// Empty fields of cfg fall back to DefaultCORSConfig.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	def := DefaultCORSConfig()
	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = def.AllowedMethods
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = def.AllowedHeaders
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}

	wildcard := slices.Contains(cfg.AllowedOrigins, "*")
	static := http.Header{}
	static.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
	static.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
	static.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
	if len(cfg.ExposedHeaders) > 0 {
		static.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposedHeaders, ", "))
	}
	if cfg.AllowCredentials {
		static.Set("Access-Control-Allow-Credentials", "true")
	}

	allowOrigin := func(origin string) (string, bool) {
		switch {
		case wildcard && !cfg.AllowCredentials:
			return "*", false
		case origin == "":
			return "", false
		case wildcard || slices.Contains(cfg.AllowedOrigins, origin):
			return origin, true
		}
		return "", false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range static {
				h[k] = slices.Clone(v)
			}
			if allowed, echoed := allowOrigin(r.Header.Get("Origin")); allowed != "" {
				h.Set("Access-Control-Allow-Origin", allowed)
				if echoed {
					h.Add("Vary", "Origin")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
