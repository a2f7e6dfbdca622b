package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"wikirelay/internal/config"
	"wikirelay/internal/constants"
	"wikirelay/internal/delivery"
	"wikirelay/internal/event"
	"wikirelay/internal/ingest"
	"wikirelay/internal/logger"
	"wikirelay/internal/relay"
	"wikirelay/internal/source"
	"wikirelay/internal/wiki"
	"wikirelay/pkg/bootstrap"
	"wikirelay/pkg/health"
	"wikirelay/pkg/logging"
	"wikirelay/pkg/metrics"
	"wikirelay/pkg/middleware"
	"wikirelay/pkg/ratelimit"
)

type App struct {
	*bootstrap.Base
	dbConnector *bootstrap.DatabaseConnector
	redis       *redis.Client
	postgresDB  *sql.DB
	site        *wiki.Site
	relay       *relay.Service
	router      *gin.Engine
	server      *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("relay-service")
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initRedis(ctx); err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}

	if err := a.initPostgreSQL(ctx); err != nil {
		initCtx := logging.WithServiceName(ctx, "relay-service")
		a.Logger.WarnwCtx(initCtx, "Replica database initialization failed, log entry lookups will be disabled",
			"error", err,
		)
	}

	if err := a.initRelay(ctx); err != nil {
		return fmt.Errorf("failed to initialize relay: %w", err)
	}

	if a.Config.Sources.Kafka.Enabled {
		if err := a.InitBroker(); err != nil {
			return fmt.Errorf("failed to initialize broker: %w", err)
		}
	}

	metrics.RegisterRelayMetrics()
	metrics.RegisterDeliveryMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}
	if a.Config.Sources.HTTP.Enabled {
		metrics.RegisterIngestMetrics()
	}
	if a.Config.Sources.Kafka.Enabled {
		metrics.RegisterBrokerMetrics()
	}
	if a.Config.Sources.Stream.Enabled {
		metrics.RegisterStreamMetrics()
	}

	if err := a.initRouter(ctx); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	return nil
}

func (a *App) initRedis(ctx context.Context) error {
	rdb, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		return err
	}
	a.redis = rdb
	return nil
}

func (a *App) initPostgreSQL(ctx context.Context) error {
	postgresDB, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	if postgresDB != nil {
		a.postgresDB = postgresDB
	}
	return nil
}

func (a *App) initRelay(ctx context.Context) error {
	a.site = wiki.NewSite(a.Config.Wiki)

	repo := wiki.NewRepository(a.postgresDB, a.site)

	var files wiki.FileRepo = repo
	if a.redis != nil {
		ttl := a.Config.Database.Redis.TTLSeconds
		if ttl <= 0 {
			ttl = constants.DefaultCacheTTLSeconds
		}
		files = wiki.NewCachedFileRepo(repo, a.redis, time.Duration(ttl)*time.Second, a.Logger)
	}

	formatter := relay.NewFormatter(a.site, repo, files)
	deliverer := delivery.NewClient(a.Config.Webhook, a.Config.CircuitBreaker, a.Logger)

	svc, err := relay.NewService(a.Config.Relay, formatter, deliverer, a.Logger)
	if err != nil {
		return err
	}

	a.relay = svc
	return nil
}

func (a *App) initRouter(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.Config.Sources.HTTP.Enabled {
		if a.Config.Sources.HTTP.RateLimit.Enabled {
			rateLimitConfig := ratelimit.RateLimitConfig{
				RPS:             a.Config.Sources.HTTP.RateLimit.RPS,
				Burst:           a.Config.Sources.HTTP.RateLimit.Burst,
				CleanupInterval: time.Duration(a.Config.Sources.HTTP.RateLimit.CleanupInterval) * time.Second,
				MaxAge:          time.Duration(a.Config.Sources.HTTP.RateLimit.MaxAge) * time.Second,
			}
			router.Use(ratelimit.RateLimitMiddleware(rateLimitConfig))
		}

		ingestHandler := ingest.NewHandler(a.relay, a.Logger)
		ingestHandler.RegisterRoutes(router)
	}

	healthRegistry := health.NewCheckerRegistry()
	if a.redis != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redis))
	}
	if a.postgresDB != nil {
		healthRegistry.Register(health.NewPostgreSQLChecker(a.postgresDB))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.router = router
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.Config.Server.ReadTimeoutSeconds,
		WriteTimeout: a.Config.Server.WriteTimeoutSeconds,
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	if a.Config.Sources.Kafka.Enabled {
		inputTopic := a.Config.Broker.Kafka.InputTopic
		if inputTopic == "" {
			inputTopic = constants.DefaultInputTopic
		}

		g.Go(func() error {
			a.Logger.InfowCtx(gCtx, "Starting Kafka consumer", "topic", inputTopic)
			return a.Consumer.Consume(gCtx, inputTopic, a.handleEvent)
		})
	}

	if a.Config.Sources.Stream.Enabled {
		stream := source.NewStreamConsumer(a.Config.Sources.Stream, a.Logger)

		g.Go(func() error {
			a.Logger.InfowCtx(gCtx, "Starting change stream consumer", "url", a.Config.Sources.Stream.URL)
			return stream.Run(gCtx, a.handleEvent)
		})
	}

	return g.Wait()
}

func (a *App) handleEvent(ctx context.Context, ev *event.ChangeEvent) error {
	ctx = logging.WithEventID(ctx, strconv.FormatInt(ev.ID, 10))
	ctx = logging.WithWiki(ctx, ev.Wiki)
	return a.relay.Notify(ctx, ev)
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx := logging.WithServiceName(ctx, "relay-service")
	a.Logger.InfowCtx(shutdownCtx, "Shutting down relay service")

	additionalShutdown := func(ctx context.Context) []error {
		return a.dbConnector.ShutdownDatabases(ctx, a.redis, a.postgresDB)
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
