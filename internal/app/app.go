package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/evergrove/storefront/internal/auth"
	"github.com/evergrove/storefront/internal/config"
	"github.com/evergrove/storefront/internal/event"
	handler "github.com/evergrove/storefront/internal/handler/http"
	"github.com/evergrove/storefront/internal/quote"
	"github.com/evergrove/storefront/internal/repository"
	repomemory "github.com/evergrove/storefront/internal/repository/memory"
	repopostgres "github.com/evergrove/storefront/internal/repository/postgres"
	"github.com/evergrove/storefront/internal/repository/rediscache"
	"github.com/evergrove/storefront/internal/service"
	"github.com/evergrove/storefront/internal/storage"
	storagelocal "github.com/evergrove/storefront/internal/storage/local"
	storagememory "github.com/evergrove/storefront/internal/storage/memory"
	"github.com/evergrove/storefront/migrations"
	"github.com/evergrove/storefront/pkg/database"
	"github.com/evergrove/storefront/pkg/health"
	"github.com/evergrove/storefront/pkg/httpclient"
	pkgkafka "github.com/evergrove/storefront/pkg/kafka"
	"github.com/evergrove/storefront/pkg/tracing"
)

// productCacheTTL bounds how stale a cached product read may be. Review
// submissions update aggregates through the cache wrapper, which invalidates
// the affected keys, so the TTL only matters for out-of-band writes.
const productCacheTTL = 5 * time.Minute

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	pool            *pgxpool.Pool
	redisClient     *redis.Client
	producer        *pkgkafka.Producer
	consumer        *pkgkafka.Consumer
	dlqProducer     *pkgkafka.DLQProducer
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app := &App{cfg: cfg, logger: logger}

	// Distributed tracing is optional; when disabled InitTracer installs a
	// no-op provider.
	tracingShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	app.tracingShutdown = tracingShutdown

	// Repositories: PostgreSQL in real deployments, in-process for tests and
	// local development without a database.
	var (
		productRepo repository.ProductRepository
		reviewRepo  repository.ReviewRepository
	)
	switch cfg.RepositoryBackend {
	case "postgres":
		pgCfg := database.PostgresConfig{
			Host:            cfg.PostgresHost,
			Port:            cfg.PostgresPort,
			User:            cfg.PostgresUser,
			Password:        cfg.PostgresPass,
			DBName:          cfg.PostgresDB,
			SSLMode:         cfg.PostgresSSL,
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
			MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
		}

		pool, err := database.NewPostgresPool(ctx, &pgCfg)
		if err != nil {
			app.closePartial()
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		app.pool = pool
		logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)

		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			app.closePartial()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")

		productRepo = repopostgres.NewProductRepository(pool)
		reviewRepo = repopostgres.NewReviewRepository(pool)
	case "memory":
		logger.Warn("using in-memory repositories, data will not survive restarts")
		productRepo = repomemory.NewProductRepository()
		reviewRepo = repomemory.NewReviewRepository()
	default:
		return nil, fmt.Errorf("unknown repository backend %q", cfg.RepositoryBackend)
	}

	// Optional Redis read-through cache for product lookups.
	if cfg.RedisEnabled() {
		redisCfg, err := redisConfigFromAddr(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			app.closePartial()
			return nil, fmt.Errorf("parse REDIS_ADDR: %w", err)
		}
		client, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			app.closePartial()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		app.redisClient = client
		productRepo = rediscache.NewProductRepository(productRepo, client, productCacheTTL, logger)
		logger.Info("product cache enabled", slog.String("addr", cfg.RedisAddr))
	}

	// Image asset storage.
	var store storage.Storage
	switch cfg.StorageBackend {
	case "local":
		store, err = storagelocal.New(cfg.MediaRoot, cfg.MediaBaseURL)
		if err != nil {
			app.closePartial()
			return nil, fmt.Errorf("init local storage: %w", err)
		}
	case "memory":
		store = storagememory.New(cfg.MediaBaseURL)
	default:
		app.closePartial()
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	// Kafka producer for domain events.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	app.producer = producer
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Quote provider: zenquotes.io behind a retrying client and a circuit
	// breaker. The service layer falls back to a local pool on any failure.
	quoteClient := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("zenquotes"),
		logger,
	)
	quoteProvider := quote.NewZenQuotesProvider(quoteClient, cfg.QuoteAPIURL, cfg.QuoteFetchTimeout)

	// Build the dependency graph.
	authorizer := auth.NewJWTAuthorizer(cfg.JWTSecret)
	eventProducer := event.NewProducer(producer, logger)
	aggregator := service.NewRatingAggregator(productRepo, reviewRepo, logger)
	productService := service.NewProductService(productRepo, eventProducer, authorizer, logger)
	reviewService := service.NewReviewService(productRepo, reviewRepo, aggregator, eventProducer, authorizer, logger)
	assetService := service.NewAssetService(productRepo, store, eventProducer, authorizer, logger)
	quoteService := service.NewQuoteService(quoteProvider, logger)

	// Review event consumer: reconciles rating aggregates written by other
	// replicas or out-of-band review producers. Deduplicates redeliveries
	// and parks undecodable payloads on the DLQ.
	dlqProducer := pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
	app.dlqProducer = dlqProducer
	idempotencyStore := pkgkafka.NewMemoryIdempotencyStore(24 * time.Hour)
	eventConsumer := event.NewConsumer(aggregator, dlqProducer, logger)
	app.consumer = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  event.ConsumerGroup,
		Topic:    event.TopicReviewCreated,
		MinBytes: 1,
		MaxBytes: 10e6, // 10 MB
	}, pkgkafka.IdempotentHandler(idempotencyStore, eventConsumer.Handle, logger), logger)

	// Health checks.
	healthHandler := health.NewHandler()
	if app.pool != nil {
		healthHandler.Register("postgres", func(ctx context.Context) error {
			return app.pool.Ping(ctx)
		})
	}
	if app.redisClient != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return app.redisClient.Ping(ctx).Err()
		})
	}

	// HTTP router.
	router := handler.NewRouter(productService, reviewService, assetService, quoteService, healthHandler, logger, cfg.PprofAllowedCIDRs)

	app.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP server and the review event consumer, blocking until
// the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		if err := a.consumer.Start(ctx); err != nil {
			errCh <- fmt.Errorf("kafka consumer: %w", err)
		}
	}()

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
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

	if err := a.consumer.Close(); err != nil {
		a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
	}

	if err := a.dlqProducer.Close(); err != nil {
		a.logger.Error("dlq producer close error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	a.closePartial()

	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// closePartial releases connections that may already be open. Used both for
// teardown in Shutdown and for cleanup when NewApp fails partway through.
func (a *App) closePartial() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
		a.redisClient = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}

// redisConfigFromAddr splits a "host:port" address into the pool config.
func redisConfigFromAddr(addr, password string, db int) (database.RedisConfig, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return database.RedisConfig{}, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return database.RedisConfig{}, fmt.Errorf("invalid port %q", portStr)
	}
	return database.RedisConfig{
		Host:     host,
		Port:     port,
		Password: password,
		DB:       db,
	}, nil
}
