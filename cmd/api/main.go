// Package main is the entrypoint for the opmeter API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/opmeter/opmeter/internal/cache"
	"github.com/opmeter/opmeter/internal/config"
	"github.com/opmeter/opmeter/internal/executor"
	"github.com/opmeter/opmeter/internal/handler"
	"github.com/opmeter/opmeter/internal/metrics"
	"github.com/opmeter/opmeter/internal/middleware"
	"github.com/opmeter/opmeter/internal/repository"
	"github.com/opmeter/opmeter/internal/server"
	"github.com/opmeter/opmeter/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	startingBalance, err := decimal.NewFromString(cfg.DefaultUserBalance)
	if err != nil {
		logger.Error("invalid DEFAULT_USER_BALANCE", "value", cfg.DefaultUserBalance, "error", err)
		os.Exit(1)
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	pages := service.Pagination{Default: cfg.DefaultPageSize, Max: cfg.MaxPageSize}
	exec := executor.New(cfg.RandomAPIURL, cfg.RandomAPITimeout, logger)

	userService := service.NewUserService(repo, cacheClient, cfg.SessionTTL, startingBalance, metricsRecorder)
	operationService := service.NewOperationService(repo, cacheClient, pages, metricsRecorder, logger)
	transactionService := service.NewTransactionService(repo, operationService, exec, metricsRecorder, logger)
	recordService := service.NewRecordService(repo, pages)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	userHandler := handler.NewUserHandler(userService, logger)
	operationHandler := handler.NewOperationHandler(operationService, logger)
	calculateHandler := handler.NewCalculateHandler(transactionService, logger)
	recordHandler := handler.NewRecordHandler(recordService, logger)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	// Setup router
	r := setupRouter(routerDeps{
		health:    healthHandler,
		users:     userHandler,
		ops:       operationHandler,
		calculate: calculateHandler,
		records:   recordHandler,
		metrics:   metricsHandler,
		sessions:  userService,
		limiter:   cacheClient,
		cfg:       cfg,
		logger:    logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	health    *handler.HealthHandler
	users     *handler.UserHandler
	ops       *handler.OperationHandler
	calculate *handler.CalculateHandler
	records   *handler.RecordHandler
	metrics   *handler.MetricsHandler
	sessions  middleware.SessionResolver
	limiter   middleware.LoginLimiter
	cfg       *config.Config
	logger    *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	cfg := deps.cfg
	logger := deps.logger

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: cfg.IsDevelopment(),
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)

	authMiddleware := middleware.Auth(middleware.AuthConfig{
		Logger:   logger,
		Sessions: deps.sessions,
	})

	loginRateLimit := middleware.RateLimitLogin(middleware.RateLimitConfig{
		Logger:    logger,
		Limiter:   deps.limiter,
		Enabled:   cfg.LoginRateLimitEnabled,
		PerMinute: cfg.LoginRateLimitPerMin,
	})

	jsonOnly := middleware.RequireContentType("application/json")

	// Credential exchange is form-encoded and rate limited per IP.
	r.With(loginRateLimit, middleware.RequireContentType("application/x-www-form-urlencoded")).
		Post("/token", deps.users.Token)

	// Registration and the operation catalog are open.
	r.With(jsonOnly).Post("/users/", deps.users.Register)
	r.Route("/operations", func(r chi.Router) {
		r.Get("/", deps.ops.List)
		r.With(jsonOnly).Post("/", deps.ops.Create)
	})

	// Everything below requires a bearer session.
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.With(jsonOnly).Post("/calculate/", deps.calculate.Calculate)
		r.Post("/logout", deps.users.Logout)

		r.Route("/records", func(r chi.Router) {
			r.Get("/", deps.records.List)
			r.Get("/{id}", deps.records.Get)
			r.Delete("/{id}", deps.records.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
