package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appanalytics "github.com/nillpakhi2003-droid/habib-furniture/internal/application/analytics"
	appauth "github.com/nillpakhi2003-droid/habib-furniture/internal/application/auth"
	appcatalog "github.com/nillpakhi2003-droid/habib-furniture/internal/application/catalog"
	apporder "github.com/nillpakhi2003-droid/habib-furniture/internal/application/order"
	appsettings "github.com/nillpakhi2003-droid/habib-furniture/internal/application/settings"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/auth/session"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/config"
	httpserver "github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/http"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/id"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/memory"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/notify"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/observability/oteltrace"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/observability/prometrics"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/observability/telemetry"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/observability/zaplogger"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/outbox"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/postgres"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/ratelimit"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"

	redis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger not built yet; stderr is all we have.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := zaplogger.New(
		observability.F("service", cfg.ServiceName),
		observability.F("env", cfg.Env),
	)
	tracer := oteltrace.New(cfg.ServiceName)
	tel := buildTelemetry(tracer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage: postgres when configured, in-memory otherwise.
	var (
		orderStore   apporder.Store
		productRepo  appcatalog.Repository
		userRepo     appauth.Users
		settingsRepo appsettings.Repository
		tracker      appanalytics.Tracker
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("database_open_failed", observability.F("error", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
		orderStore = postgres.NewOrderStore(db)
		productRepo = postgres.NewProductRepo(db)
		userRepo = postgres.NewUserRepo(db)
		settingsRepo = postgres.NewSettingsRepo(db)
		tracker = postgres.NewPageviewRepo(db)
	} else {
		logger.Warn("using_memory_store")
		store := memory.NewStore()
		orderStore = store
		productRepo = store
		userRepo = store
		settingsRepo = store
		tracker = store
	}

	limiter := buildLimiter(cfg, logger, tel)

	sessions, err := session.NewManager(cfg.AuthSecret)
	if err != nil {
		logger.Error("session_manager_failed", observability.F("error", err.Error()))
		os.Exit(1)
	}

	bus := outbox.NewBus(logger)
	bus.Start(ctx)
	defer bus.Stop(context.Background())

	notifyWorker := notify.NewWorker(bus, notify.NewLogNotifier(logger))
	notifyWorker.Start()

	idGen := id.NewUUIDGenerator()
	orderService := apporder.NewService(orderStore, limiter, idGen, bus, tel)
	catalogService := appcatalog.NewService(productRepo, idGen, tel)
	authService := appauth.NewService(userRepo, sessions, tel)
	settingsService := appsettings.NewService(settingsRepo, tel)
	analyticsService := appanalytics.NewService(tracker, tel)

	handler := httpserver.NewHandler(httpserver.HandlerConfig{
		Orders:    orderService,
		Catalog:   catalogService,
		Auth:      authService,
		Settings:  settingsService,
		Analytics: analyticsService,
		Metrics:   promhttp.Handler(),
	}, tel)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http_server_start", observability.F("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", observability.F("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", observability.F("error", err.Error()))
	} else {
		logger.Info("http_server_stopped")
	}
}

func buildTelemetry(tracer observability.Tracer, logger observability.Logger) observability.Observability {
	reg := prometrics.New("habib_furniture", "")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: reg.Counter(
			string(observability.MUsecaseRequests),
			"Total number of use case invocations.",
			"use_case", "outcome"),
		observability.MHTTPRequests: reg.Counter(
			string(observability.MHTTPRequests),
			"Total number of HTTP requests.",
			"method", "route", "status"),
		observability.MOrdersPlaced: reg.Counter(
			string(observability.MOrdersPlaced),
			"Orders successfully placed.",
			"payment_method"),
		observability.MStockDecremented: reg.Counter(
			string(observability.MStockDecremented),
			"Units of stock reserved by placed orders."),
		observability.MRateLimitDecisions: reg.Counter(
			string(observability.MRateLimitDecisions),
			"Rate limiter decisions by outcome.",
			"outcome"),
		observability.MSessionVerifies: reg.Counter(
			string(observability.MSessionVerifies),
			"Admin session verifications by outcome.",
			"outcome"),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MUsecaseDuration: reg.Histogram(
			string(observability.MUsecaseDuration),
			"Duration of use case execution in seconds.",
			prometheus.DefBuckets,
			"use_case"),
		observability.MHTTPRequestDuration: reg.Histogram(
			string(observability.MHTTPRequestDuration),
			"Duration of HTTP requests in seconds.",
			prometheus.DefBuckets,
			"method", "route"),
	}
	return telemetry.New(tracer, logger, counters, histograms)
}

func buildLimiter(cfg *config.Config, logger observability.Logger, tel observability.Observability) *ratelimit.PolicyLimiter {
	limitCfg := ratelimit.Config{
		Window: cfg.RateLimitWindow,
		Limit:  cfg.RateLimitMax,
	}

	var inner ratelimit.Limiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("redis_url_invalid", observability.F("error", err.Error()))
			os.Exit(1)
		}
		inner = ratelimit.NewRedisLimiter(redis.NewClient(opts), limitCfg, "rl")
	} else {
		logger.Warn("using_memory_rate_limiter")
		inner = ratelimit.NewMemoryLimiter(limitCfg)
	}
	return ratelimit.NewPolicyLimiter(inner, cfg.RateLimitFailClosed, logger, tel.Metrics())
}
