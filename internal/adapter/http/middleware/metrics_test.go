package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/cuentas/internal/infrastructure/metrics"
)

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		label      string
		statusCode int
	}{
		{
			name:       "labels by route pattern",
			method:     http.MethodGet,
			path:       "/api/v1/accounts/01HABC",
			label:      "/api/v1/accounts/{id}",
			statusCode: http.StatusTeapot,
		},
		{
			name:       "static path",
			method:     http.MethodPost,
			path:       "/health",
			label:      "/health",
			statusCode: http.StatusCreated,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/nope",
			label:      "unmatched",
			statusCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())

			r := chi.NewRouter()
			r.Use(Metrics(m))
			reply := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(tc.statusCode) }
			r.Get("/api/v1/accounts/{id}", reply)
			r.Post("/health", reply)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

			if rec.Code != tc.statusCode {
				t.Fatalf("expected status %d, got %d", tc.statusCode, rec.Code)
			}

			got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues(tc.method, tc.label, strconv.Itoa(tc.statusCode)))
			if got != 1 {
				t.Fatalf("expected request counter to be 1, got %v", got)
			}
		})
	}
}
