package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/cuentas/internal/adapter/http/handler"
	"github.com/iho/cuentas/internal/adapter/http/middleware"
	"github.com/iho/cuentas/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	HolderHandler   *handler.HolderHandler
	CurrencyHandler *handler.CurrencyHandler
	AccountHandler  *handler.AccountHandler
	MovementHandler *handler.MovementHandler
	LedgerHandler   *handler.LedgerHandler
	HealthHandler   *handler.HealthHandler

	Logger zerolog.Logger
	// Metrics and MetricsHandler are optional. MetricsHandler serves
	// /metrics.
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	// IdempotencyStore is optional.
	IdempotencyStore middleware.IdempotencyStore
	IdempotencyTTL   time.Duration
	// RateLimiter is optional.
	RateLimiter *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Holders
		r.Route("/holders", func(r chi.Router) {
			r.Post("/", cfg.HolderHandler.Create)
			r.Get("/", cfg.HolderHandler.List)
			r.Get("/{ref}", cfg.HolderHandler.Get)
			r.Delete("/{ref}", cfg.HolderHandler.Delete)
			r.Get("/{ref}/accounts", cfg.HolderHandler.ListAccounts)
			r.Get("/{ref}/capital", cfg.HolderHandler.Capital)
		})

		// Currencies
		r.Route("/currencies", func(r chi.Router) {
			r.Post("/", cfg.CurrencyHandler.Create)
			r.Get("/", cfg.CurrencyHandler.List)
			r.Get("/{code}", cfg.CurrencyHandler.Get)
			r.Post("/{code}/quotes", cfg.CurrencyHandler.AddQuote)
			r.Get("/{code}/quotes/current", cfg.CurrencyHandler.CurrentQuote)
		})

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/by-key/{key}", cfg.AccountHandler.GetByKey)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Patch("/{id}", cfg.AccountHandler.Update)
			r.Delete("/{id}", cfg.AccountHandler.Delete)
			r.Get("/{id}/balance", cfg.AccountHandler.Balance)
			r.Post("/{id}/split", cfg.AccountHandler.Split)
			r.Get("/{id}/subaccounts", cfg.AccountHandler.ListSubaccounts)
			r.Get("/{id}/movements", cfg.MovementHandler.ListByAccount)
			r.Get("/{id}/reconcile", cfg.LedgerHandler.ReconcileAccount)
		})

		// Movements
		r.Route("/movements", func(r chi.Router) {
			r.Post("/", cfg.MovementHandler.Create)
			r.Get("/", cfg.MovementHandler.ListByDateRange)
			r.Get("/{id}", cfg.MovementHandler.Get)
			r.Patch("/{id}", cfg.MovementHandler.Modify)
			r.Delete("/{id}", cfg.MovementHandler.Delete)
		})

		// Ledger
		r.Route("/ledger", func(r chi.Router) {
			r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
			r.Get("/reconciliation", cfg.LedgerHandler.Report)
		})
	})

	return r
}

// SetHandlers builds the handlers of every use case in services.
func (cfg *RouterConfig) SetHandlers(services Services, defaultCurrency string, checks ...handler.HealthCheck) {
	cfg.HolderHandler = handler.NewHolderHandler(services.Holders, defaultCurrency)
	cfg.CurrencyHandler = handler.NewCurrencyHandler(services.Currencies)
	cfg.AccountHandler = handler.NewAccountHandler(services.Accounts)
	cfg.MovementHandler = handler.NewMovementHandler(services.Movements)
	cfg.LedgerHandler = handler.NewLedgerHandler(services.Ledger, services.Reconciliation)
	cfg.HealthHandler = handler.NewHealthHandler(checks...)
}

// Services lists the use cases served over HTTP.
type Services struct {
	Holders        handler.HolderService
	Currencies     handler.CurrencyService
	Accounts       handler.AccountService
	Movements      handler.MovementService
	Ledger         handler.LedgerService
	Reconciliation handler.ReconciliationService
}
