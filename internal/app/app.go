package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/repository"
	filerepo "github.com/utafrali/storefront/internal/repository/file"
	mongorepo "github.com/utafrali/storefront/internal/repository/mongo"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

// dashboardTokenTTL bounds the auth_token lifetime independently of the
// cookie's rememberMe max-age.
const dashboardTokenTTL = 7 * 24 * time.Hour

// closer is a named shutdown step.
type closer struct {
	name  string
	close func(ctx context.Context) error
}

// stores is the collection backend selected by STORE_BACKEND.
type stores struct {
	carts     repository.CartRepository
	wishlists repository.WishlistRepository
	closers   []closer
}

// App wires together all dependencies and runs the storefront API.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	closers    []closer
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	closers := []closer{{name: "tracer", close: shutdownTracer}}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, st.closers...)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical(cfg.StoreBackend, st.carts.Ping)

	// Kafka is optional. A typed nil producer must not reach event.NewProducer.
	var publisher pkgkafka.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = producer
		closers = append(closers, closer{name: "kafka producer", close: func(context.Context) error { return producer.Close() }})
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("kafka disabled, collection events are dropped")
	}

	// Build the dependency graph.
	cat := catalog.New()
	events := event.NewProducer(publisher, logger)
	tokens := auth.NewJWTManager(cfg.AuthSecret, dashboardTokenTTL)

	svcs := handler.Services{
		Cart:     service.NewCartService(st.carts, cat, events, logger),
		Wishlist: service.NewWishlistService(st.wishlists, cat, events, logger),
		Auth: service.NewAuthService(tokens, service.Credentials{
			Email:    cfg.AuthEmail,
			Password: cfg.AuthPassword,
		}, logger),
		Catalog: cat,
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(svcs, tokens.Validate, healthHandler, handler.Options{
		SecureCookies:  cfg.SecureCookies,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		CORS:           cors,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		closers:    closers,
	}, nil
}

// openStores connects the configured collection backend.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	ttl := cfg.CollectionTTLDuration()
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)

	switch cfg.StoreBackend {
	case config.BackendRedis:
		rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		return &stores{
			carts:     redisrepo.NewRepository[domain.CartItem](rdb, repository.KindCart, ttl),
			wishlists: redisrepo.NewRepository[domain.WishlistItem](rdb, repository.KindWishlist, ttl),
			closers:   []closer{{name: "redis", close: func(context.Context) error { return rdb.Close() }}},
		}, nil

	case config.BackendMongo:
		client, err := database.NewMongoClient(ctx, database.MongoConfig{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDatabase,
			ConnectTimeout: 10 * time.Second,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		db := client.Database(cfg.MongoDatabase)
		carts := mongorepo.NewRepository[domain.CartItem](db, repository.KindCart, ttl)
		wishlists := mongorepo.NewRepository[domain.WishlistItem](db, repository.KindWishlist, ttl)
		if err := errors.Join(carts.CreateIndexes(ctx), wishlists.CreateIndexes(ctx)); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("create mongodb indexes: %w", err)
		}
		logger.Info("connected to MongoDB", slog.String("database", cfg.MongoDatabase))
		return &stores{
			carts:     carts,
			wishlists: wishlists,
			closers:   []closer{{name: "mongodb", close: client.Disconnect}},
		}, nil

	default:
		carts, err := filerepo.NewRepository[domain.CartItem](cfg.DataDir, repository.KindCart)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		wishlists, err := filerepo.NewRepository[domain.WishlistItem](cfg.DataDir, repository.KindWishlist)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		logger.Info("using file store", slog.String("dir", cfg.DataDir))
		return &stores{carts: carts, wishlists: wishlists}, nil
	}
}

// Handler returns the HTTP handler, for in-process tests.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	// Close in reverse order of creation.
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(shutdownCtx); err != nil {
			a.logger.Error(c.name+" close error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
