package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	adaptershttp "github.com/iho/cuentas/internal/adapter/http"
	"github.com/iho/cuentas/internal/adapter/http/dto"
	"github.com/iho/cuentas/internal/adapter/http/handler"
	redisrepo "github.com/iho/cuentas/internal/adapter/repository/redis"
	infraredis "github.com/iho/cuentas/internal/infrastructure/redis"
	"github.com/iho/cuentas/internal/usecase"
	"github.com/iho/cuentas/tests/testutil"
)

func TestHTTPLedgerFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	l := testutil.NewLedger(t, testDB)

	mr := miniredis.RunT(t)
	redisClient, err := infraredis.NewClient(l.Ctx, infraredis.Config{URL: fmt.Sprintf("redis://%s", mr.Addr())})
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	services := usecase.NewServices(testDB.Deps(), usecase.ServiceOptions{
		DefaultCurrency: "ARS",
		Holder:          usecase.HolderDefaults{Key: "titular", Name: "Titular"},
		QuoteCache:      redisrepo.NewQuoteCache(redisClient, "test"),
	})

	cfg := adaptershttp.RouterConfig{
		Logger:           zerolog.Nop(),
		IdempotencyStore: redisrepo.NewIdempotencyStore(redisClient),
	}
	cfg.SetHandlers(adaptershttp.Services{
		Holders:        services.Holders,
		Currencies:     services.Currencies,
		Accounts:       services.Accounts,
		Movements:      services.Movements,
		Ledger:         services.Consistency,
		Reconciliation: services.Reconciliation,
	}, "ARS", handler.HealthCheck{Name: "postgres", Ping: testDB.Pool.Ping})
	router := adaptershttp.NewRouter(cfg)

	do := func(method, path string, body any, idempotencyKey string) *httptest.ResponseRecorder {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			if err := json.NewEncoder(&buf).Encode(body); err != nil {
				t.Fatalf("encode failed: %v", err)
			}
		}
		req := httptest.NewRequest(method, path, &buf)
		if idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", idempotencyKey)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(http.MethodGet, "/ready", nil, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d", rec.Code)
	}

	rec := do(http.MethodPost, "/api/v1/accounts/", map[string]any{"name": "Caja", "key": "caja"}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account: %d %s", rec.Code, rec.Body.String())
	}
	var caja dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &caja); err != nil {
		t.Fatalf("decode account: %v", err)
	}

	movement := map[string]any{
		"concept":          "sueldo",
		"amount":           "250.50",
		"entry_account_id": caja.ID,
		"date":             "2024-03-01",
	}
	first := do(http.MethodPost, "/api/v1/movements/", movement, "sueldo-marzo")
	if first.Code != http.StatusCreated {
		t.Fatalf("create movement: %d %s", first.Code, first.Body.String())
	}
	replayed := do(http.MethodPost, "/api/v1/movements/", movement, "sueldo-marzo")
	if replayed.Header().Get("X-Idempotency-Replay") != "true" {
		t.Fatalf("expected the retried request to be replayed, got %d %s", replayed.Code, replayed.Body.String())
	}

	rec = do(http.MethodGet, "/api/v1/accounts/"+caja.ID+"/balance", nil, "")
	var balance struct {
		Balance string `json:"balance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &balance); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if balance.Balance != "250.5" {
		t.Fatalf("expected the movement to be applied once, got balance %s", balance.Balance)
	}

	rec = do(http.MethodGet, "/api/v1/ledger/consistency", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected a consistent ledger, got %d %s", rec.Code, rec.Body.String())
	}
}
