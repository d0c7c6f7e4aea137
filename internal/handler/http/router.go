package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// Services bundles what the router dispatches to.
type Services struct {
	Cart     *service.CartService
	Wishlist *service.WishlistService
	Auth     *service.AuthService
	Catalog  *catalog.Catalog
}

// Options tunes the router's middleware.
type Options struct {
	SecureCookies  bool
	PprofCIDRs     []string
	CORS           middleware.CORSConfig
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	svcs Services,
	validateToken middleware.TokenValidator,
	healthHandler *health.Handler,
	opts Options,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(opts.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, opts.PprofCIDRs, logger)

	cartHandler := NewCartHandler(svcs.Cart, logger)
	wishlistHandler := NewWishlistHandler(svcs.Wishlist, logger)
	catalogHandler := NewCatalogHandler(svcs.Catalog, logger)
	authHandler := NewAuthHandler(svcs.Auth, opts.SecureCookies, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/orders", catalogHandler.ListOrders)
		r.Get("/stats", catalogHandler.GetStats)

		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		r.With(middleware.Auth(validateToken)).Get("/dashboard", catalogHandler.Dashboard)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(opts.SecureCookies))
			r.Use(middleware.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst, logger))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/", cartHandler.AddItem)
				r.Put("/", cartHandler.UpdateItemQuantity)
				r.Delete("/", cartHandler.RemoveItem)
				r.Delete("/items", cartHandler.ClearCart)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlistHandler.GetWishlist)
				r.Post("/", wishlistHandler.Toggle)
				r.Delete("/", wishlistHandler.RemoveItem)
			})
		})
	})

	return r
}
