package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	apimiddleware "github.com/iho/cuentas/internal/adapter/http/middleware"
	"github.com/iho/cuentas/internal/adapter/repository/memory"
	"github.com/iho/cuentas/internal/adapter/repository/postgres"
	"github.com/iho/cuentas/internal/infrastructure/metrics"
	"github.com/iho/cuentas/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotentRequestsReplay(t *testing.T) {
	store := &memoryIdempotencyStore{entries: map[string][]byte{}}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/holders/", strings.NewReader(`{"key":"ana","name":"Ana"}`))
		req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := post()
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
	}

	second := post()
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201 instead of a duplicate key error, got %d: %s", second.Code, second.Body.String())
	}
	if second.Header().Get(apimiddleware.IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected the second response to be a replay")
	}
	if strings.TrimSpace(first.Body.String()) != second.Body.String() {
		t.Fatalf("expected identical bodies, got %q and %q", first.Body.String(), second.Body.String())
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/holders/",
		"GET /api/v1/holders/{ref}/capital",
		"POST /api/v1/currencies/{code}/quotes",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/{id}/balance",
		"POST /api/v1/accounts/{id}/split",
		"GET /api/v1/accounts/{id}/subaccounts",
		"GET /api/v1/accounts/{id}/movements",
		"GET /api/v1/accounts/{id}/reconcile",
		"POST /api/v1/movements/",
		"PATCH /api/v1/movements/{id}",
		"DELETE /api/v1/movements/{id}",
		"GET /api/v1/ledger/consistency",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func TestNewRouter_LedgerScenario(t *testing.T) {
	router := NewRouter(newRouterConfig())

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}
	decode := func(rec *httptest.ResponseRecorder, v any) {
		t.Helper()
		if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
			t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
		}
	}

	rec := do(http.MethodPost, "/api/v1/accounts/", `{"name":"Caja","key":"caja","opening_balance":"100","date":"2024-01-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create caja: %d %s", rec.Code, rec.Body.String())
	}
	var caja struct{ ID string }
	decode(rec, &caja)

	rec = do(http.MethodPost, "/api/v1/accounts/", `{"name":"Banco","key":"banco"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create banco: %d %s", rec.Code, rec.Body.String())
	}
	var banco struct{ ID string }
	decode(rec, &banco)

	rec = do(http.MethodPost, "/api/v1/movements/",
		`{"concept":"depósito","amount":"40","entry_account_id":"`+banco.ID+`","exit_account_id":"`+caja.ID+`","date":"2024-01-02"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create movement: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(http.MethodPost, "/api/v1/movements/",
		`{"concept":"vuelta","amount":"5","entry_account_id":"`+caja.ID+`","exit_account_id":"`+caja.ID+`"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for same account, got %d", rec.Code)
	}

	var balance struct{ Balance string }
	rec = do(http.MethodGet, "/api/v1/accounts/"+caja.ID+"/balance", "")
	decode(rec, &balance)
	if balance.Balance != "60" {
		t.Fatalf("expected caja balance 60, got %s", balance.Balance)
	}

	rec = do(http.MethodGet, "/api/v1/accounts/"+caja.ID+"/balance?date=2024-01-01", "")
	decode(rec, &balance)
	if balance.Balance != "100" {
		t.Fatalf("expected caja balance 100 on the first day, got %s", balance.Balance)
	}

	rec = do(http.MethodGet, "/api/v1/ledger/consistency", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected a consistent ledger, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(http.MethodDelete, "/api/v1/accounts/"+banco.ID, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 deleting an account with balance, got %d", rec.Code)
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	store := memory.NewStore()
	deps := usecase.Deps{
		TxManager: store,
		Repos:     store.Repositories(),
		IDGen:     postgres.NewULIDGenerator(),
		Logger:    zerolog.Nop(),
	}
	services := usecase.NewServices(deps, usecase.ServiceOptions{
		DefaultCurrency: "ARS",
		Holder:          usecase.HolderDefaults{Key: "titular", Name: "Titular"},
	})

	registry := prometheus.NewRegistry()
	cfg := RouterConfig{
		Logger:         zerolog.Nop(),
		Metrics:        metrics.New(registry),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	cfg.SetHandlers(Services{
		Holders:        services.Holders,
		Currencies:     services.Currencies,
		Accounts:       services.Accounts,
		Movements:      services.Movements,
		Ledger:         services.Consistency,
		Reconciliation: services.Reconciliation,
	}, "ARS")

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type memoryIdempotencyStore struct {
	entries map[string][]byte
}

func (s *memoryIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error) {
	stored, ok := s.entries[key]
	if !ok {
		s.entries[key] = nil
		return nil, false, nil
	}
	if stored == nil {
		return nil, true, nil
	}
	return stored, false, nil
}

func (s *memoryIdempotencyStore) Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.entries[key] = response
	return nil
}

func (s *memoryIdempotencyStore) Release(ctx context.Context, key string) error {
	delete(s.entries, key)
	return nil
}
