package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"chat-insights/internal/config"
	"chat-insights/internal/db"
	"chat-insights/internal/handlers"
	"chat-insights/internal/insights"
	"chat-insights/internal/logging"
	"chat-insights/internal/middleware"
	"chat-insights/internal/observability"
	"chat-insights/internal/rabbitmq"
	"chat-insights/internal/repositories"
	"chat-insights/internal/source"
	"chat-insights/internal/telemetry"
	"chat-insights/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cfg.Service, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Tracing.Endpoint, cfg.Service, cfg.Environment)
	if err != nil {
		logger.Fatal("failed to set up tracing", zap.Error(err))
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	emitter := telemetry.NewAuditEmitter(publisher, cfg.AMQP.RoutingKey, cfg.Service, cfg.Environment, logger)

	src, closeSource, err := buildSource(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build data source", zap.Error(err))
	}
	defer closeSource()

	loc, err := cfg.Insights.Location()
	if err != nil {
		logger.Fatal("invalid timezone", zap.Error(err))
	}

	hub := ws.NewHub(logger)
	service := insights.NewService(src, insights.Config{
		Location:       loc,
		IncludePrivate: cfg.Insights.IncludePrivate,
		POCLabels:      cfg.Insights.POCLabels,
	}, logger, hub, emitter)

	// The server starts even when the first load fails; the API answers 503
	// until a reload succeeds.
	if err := service.Reload(ctx); err != nil {
		logger.Error("initial snapshot load failed", zap.Error(err))
	}
	go func() {
		if err := service.Run(ctx, cfg.Source.RefreshInterval); err != nil {
			logger.Error("snapshot refresh stopped", zap.Error(err))
		}
	}()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Service))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.NewHealthHandler(cfg.Service, cfg.Environment,
		rabbitmq.PublisherMode(publisher), rabbitmq.PublisherNoopReason(publisher)).Register(router)

	api := router.Group("/api", middleware.AuthMiddleware(cfg.Server.APIToken))
	handlers.NewInsightsHandler(service, emitter).Register(api)

	router.GET("/ws/insights", ws.NewInsightsWebSocketHandler(hub, cfg.Server.APIToken).Handle)
	handlers.RegisterDebugRoutes(router, emitter, cfg.Server.DebugRoutes)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}

// buildSource picks the raw-table source and wraps it in the snapshot cache.
func buildSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (source.Source, func(), error) {
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var raw source.Source
	switch cfg.Source.Kind {
	case config.SourceHTTP:
		client := &http.Client{Timeout: cfg.Source.HTTPTimeout}
		raw = source.NewHTTP(client, cfg.Source.URLs())
	case config.SourcePostgres:
		database, err := db.Connect(cfg.Database.DSN, logger)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, func() { _ = database.Close() })
		raw = repositories.NewRawTableRepo(database)
	default:
		raw = source.NewCSVDir(cfg.Source.CSVDir)
	}

	redisClient, err := db.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		closeAll()
		return nil, func() {}, err
	}

	var cache source.Cache = source.NewMemoryCache()
	if redisClient != nil {
		closers = append(closers, func() { _ = redisClient.Close() })
		cache = source.NewRedisCache(redisClient, cfg.Service+":")
		logger.Info("raw snapshot cache in redis", zap.String("addr", cfg.Redis.Addr))
	}

	logger.Info("data source ready", zap.String("kind", cfg.Source.Kind))
	return source.NewCached(raw, cache, cfg.Source.CacheTTL, logger), closeAll, nil
}
