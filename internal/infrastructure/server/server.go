package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/huggypanda/backend/internal/api/http"
	"github.com/huggypanda/backend/internal/api/middleware"
	"github.com/huggypanda/backend/internal/api/ws"
	"github.com/huggypanda/backend/internal/domain/aggregate"
	"github.com/huggypanda/backend/internal/domain/layout"
	"github.com/huggypanda/backend/internal/domain/notice"
	"github.com/huggypanda/backend/internal/domain/search"
	"github.com/huggypanda/backend/internal/domain/session"
	"github.com/huggypanda/backend/internal/infrastructure/config"
	"github.com/huggypanda/backend/internal/infrastructure/logging"
	"github.com/huggypanda/backend/internal/infrastructure/monitoring"
	"github.com/huggypanda/backend/internal/infrastructure/resilience"
	"github.com/huggypanda/backend/internal/infrastructure/sessionstore"
	"github.com/huggypanda/backend/internal/infrastructure/tracing"
)

// Version is reported by /health
const Version = "0.1.0"

const streamPath = "/stream"

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	handler http.Handler
	http    *http.Server
	store   sessionstore.Store
	engine  *search.Engine
	notices *notice.Registry
	tracer  *tracing.Tracer
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.NewFromLevel(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing search server",
		zap.String("port", cfg.Server.Port),
		zap.String("session_backend", cfg.Session.Backend),
	)

	sources, err := config.LoadSources(cfg.Layout.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics(nil)
	tracer := tracing.New("search", logger.Logger)

	store := newStore(cfg, logger)

	breakerSettings := resilience.DefaultSettings()
	breakerSettings.OnStateChange = func(name string, from, to resilience.State) {
		metrics.SetBreakerState(name, int(to))
		logger.Warn("circuit breaker state changed",
			zap.String("source", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()))
	}
	breakers := resilience.NewSet(breakerSettings)

	providers := newProviders(cfg)
	aggregator := aggregate.New(cfg.Layout.ImageCap).WithLogger(logger)
	wiring := gatewayWiring{breakers: breakers, tracer: tracer, metrics: metrics, logger: logger}
	if err := registerSources(aggregator, providers, sources, cfg, wiring, logger); err != nil {
		return nil, err
	}

	composer := layout.New(layout.Options{
		Shortcuts:      sources.ShortcutLinks(),
		ExampleQueries: sources.ExampleLinks(),
		ImagesPerRow:   cfg.Layout.ImagesPerRow,
	})

	notices := notice.NewRegistry().WithMetrics(metrics)
	engine := search.NewEngine(aggregator, composer, notices).
		WithMetrics(metrics).
		WithLogger(logger)

	coordinator := session.NewCoordinator(store, boundedValidator{store: store, timeout: cfg.Session.ValidateTimeout}, session.Options{
		Staleness: cfg.Session.Staleness,
		OnReplace: func(old, _ string) {
			notices.Discard(old)
			engine.Forget(old)
		},
	}).WithLogger(logger).WithMetrics(metrics)

	handlers := apihttp.NewHandlers(store, coordinator, engine, notices, apihttp.Options{
		Cookie: apihttp.CookieOptions{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			MaxAge: cfg.Session.TTL,
		},
		SessionRequired: cfg.Session.Required,
		Version:         Version,
	}).WithSuggester(providers.brave).WithLogger(logger)

	wsHandler := ws.NewHandler(coordinator, engine, notices, ws.Options{
		CookieName:      cfg.Session.CookieName,
		CookieSecure:    cfg.Session.CookieSecure,
		CookieMaxAge:    cfg.Session.TTL,
		SessionRequired: cfg.Session.Required,
	}).WithMetrics(metrics).WithLogger(logger)

	stats := apihttp.NewStats(metrics, breakers, notices)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig().WithOrigins(cfg.Server.CORSOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers.Register(router)
	router.GET(streamPath, wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/metrics/json", stats.Get)

	logger.Info("Server initialized successfully",
		zap.Strings("universal", sources.Universal),
		zap.Int("image_cap", cfg.Layout.ImageCap))

	return &Server{
		router:  router,
		handler: compress(router, cfg.Server.Gzip),
		store:   store,
		engine:  engine,
		notices: notices,
		tracer:  tracer,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}

	s.engine.Close()
	s.notices.Close()
	s.tracer.Close()

	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close session store", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to close session store: %w", err))
	}

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}

// compress gzips responses except the websocket stream, which needs the
// raw connection for its upgrade.
func compress(router http.Handler, enabled bool) http.Handler {
	if !enabled {
		return router
	}
	gz := gzhttp.GzipHandler(router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == streamPath {
			router.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

func newStore(cfg *config.Config, logger *logging.Logger) sessionstore.Store {
	if cfg.Session.Backend == "remote" {
		logger.Info("Using remote session service", zap.String("url", cfg.Session.RemoteURL))
		return sessionstore.NewRemote(cfg.Session.RemoteURL, cfg.Session.ValidateTimeout)
	}

	store := sessionstore.NewRedis(sessionstore.RedisOptions{
		Addr:     cfg.Session.RedisAddr,
		Username: cfg.Session.RedisUsername,
		Password: cfg.Session.RedisPassword,
		DB:       cfg.Session.RedisDB,
		TTL:      cfg.Session.TTL,
	})

	// An unreachable store is not fatal: session creation fails per
	// request and is surfaced as a notice.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		logger.Warn("Session store unreachable", zap.String("addr", cfg.Session.RedisAddr), zap.Error(err))
	} else {
		logger.Info("Connected to session store", zap.String("addr", cfg.Session.RedisAddr))
	}
	return store
}
