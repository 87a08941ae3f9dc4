package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthHandler_Readiness(t *testing.T) {
	ok := HealthCheck{Name: "postgres", Ping: func(ctx context.Context) error { return nil }}
	down := HealthCheck{Name: "redis", Ping: func(ctx context.Context) error { return errors.New("connection refused") }}

	rec := httptest.NewRecorder()
	NewHealthHandler(ok).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"postgres":"ok"`) {
		t.Fatalf("expected ready, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	NewHealthHandler(ok, down).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "redis unhealthy") {
		t.Fatalf("expected redis failure, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	NewHealthHandler().Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected ready without checks, got %d", rec.Code)
	}
}
