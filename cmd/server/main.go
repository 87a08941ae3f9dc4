package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/cuentas/internal/adapter/http"
	"github.com/iho/cuentas/internal/adapter/http/handler"
	"github.com/iho/cuentas/internal/adapter/http/middleware"
	"github.com/iho/cuentas/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/cuentas/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cuentas/internal/adapter/repository/redis"
	"github.com/iho/cuentas/internal/infrastructure/config"
	"github.com/iho/cuentas/internal/infrastructure/logger"
	"github.com/iho/cuentas/internal/infrastructure/metrics"
	"github.com/iho/cuentas/internal/infrastructure/postgres"
	"github.com/iho/cuentas/internal/infrastructure/redis"
	"github.com/iho/cuentas/internal/usecase"
)

const maintenanceInterval = time.Minute

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	logger.SetGlobalLevel(cfg.LogLevel)
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}
}

// run serves the ledger until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	go app.maintain(ctx, maintenanceInterval)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// app holds the wired ledger and the resources it must release.
type app struct {
	handler     http.Handler
	services    *usecase.Services
	metrics     *metrics.Metrics
	rateLimiter *middleware.RateLimiter
	pool        *pgxpool.Pool
	redisClient *redislib.Client
	logger      zerolog.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{logger: logger}

	registry := prometheus.NewRegistry()
	if cfg.MetricsEnabled {
		a.metrics = metrics.New(registry)
	}

	deps := usecase.Deps{
		IDGen:   postgresRepo.NewULIDGenerator(),
		Logger:  logger,
		Metrics: a.metrics,
	}
	var checks []handler.HealthCheck

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		deps.TxManager = store
		deps.Repos = store.Repositories()
		logger.Warn().Msg("using the in-memory store, data is lost on exit")
	default:
		if cfg.MigrationsPath != "" {
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
				return nil, err
			}
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.pool = pool
		logger.Info().Msg("connected to postgres")

		deps.TxManager = postgresRepo.NewTxManager(pool)
		deps.Repos = postgresRepo.NewRepositories(pool)
		deps.Retrier = postgresRepo.NewRetrier(logger).WithMetrics(a.metrics)
		checks = append(checks, handler.HealthCheck{Name: "postgres", Ping: pool.Ping})
	}

	opts := usecase.ServiceOptions{
		DefaultCurrency: cfg.DefaultCurrency,
		Holder:          usecase.HolderDefaults{Key: cfg.DefaultHolderKey, Name: cfg.DefaultHolderName},
	}

	routerCfg := httpAdapter.RouterConfig{
		Logger:         logger,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}

	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL, Timeout: cfg.DatabaseTimeout})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redisClient = client
		logger.Info().Msg("connected to redis")

		opts.QuoteCache = redisRepo.NewQuoteCache(client, cfg.RedisNamespace).WithMetrics(a.metrics)
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(client).WithMetrics(a.metrics)
		checks = append(checks, handler.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}})
	}

	a.services = usecase.NewServices(deps, opts)

	holder, err := a.services.Holders.GetOrCreateDefaultHolder(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to prepare the default holder: %w", err)
	}
	logger.Info().Str("holder", holder.Key).Msg("default holder ready")

	if a.metrics != nil {
		routerCfg.Metrics = a.metrics
		routerCfg.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	if cfg.RateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		routerCfg.RateLimiter = a.rateLimiter
	}

	routerCfg.SetHandlers(httpAdapter.Services{
		Holders:        a.services.Holders,
		Currencies:     a.services.Currencies,
		Accounts:       a.services.Accounts,
		Movements:      a.services.Movements,
		Ledger:         a.services.Consistency,
		Reconciliation: a.services.Reconciliation,
	}, cfg.DefaultCurrency, checks...)
	a.handler = httpAdapter.NewRouter(routerCfg)

	return a, nil
}

// maintain evicts idle rate limiters and samples the connection pool every
// interval until ctx is cancelled.
func (a *app) maintain(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick(interval)
		}
	}
}

func (a *app) tick(interval time.Duration) {
	if a.rateLimiter != nil {
		a.rateLimiter.CleanupLimiters(3 * interval)
	}
	if a.pool != nil && a.metrics != nil {
		a.metrics.DBConnections.Set(float64(a.pool.Stat().AcquiredConns()))
	}
}

// Close releases the storage connections.
func (a *app) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
