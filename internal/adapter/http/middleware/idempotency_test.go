package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeIdempotencyStore struct {
	reserveFn  func(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error)
	completeFn func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	releaseFn  func(ctx context.Context, key string) error
}

func (f *fakeIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error) {
	if f.reserveFn == nil {
		return nil, false, nil
	}
	return f.reserveFn(ctx, key, ttl)
}

func (f *fakeIdempotencyStore) Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.completeFn == nil {
		return nil
	}
	return f.completeFn(ctx, key, response, ttl)
}

func (f *fakeIdempotencyStore) Release(ctx context.Context, key string) error {
	if f.releaseFn == nil {
		return nil
	}
	return f.releaseFn(ctx, key)
}

func postWithKey(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/movements", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, key)
	return req
}

func TestIdempotencyMiddleware_StoreErrorStopsRequest(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		reserveFn: func(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error) {
			return nil, false, context.DeadlineExceeded
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, postWithKey("key-err"))

	if called {
		t.Fatalf("handler should not be called when store errors")
	}
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_StoresSuccessfulResponse(t *testing.T) {
	var (
		storedKey string
		stored    []byte
		ttlSeen   time.Duration
	)
	store := &fakeIdempotencyStore{
		completeFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			storedKey, stored, ttlSeen = key, response, ttl
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"m1"}`))
	})).ServeHTTP(rr, postWithKey("key-ok"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if storedKey != "POST:/api/v1/movements:key-ok" || ttlSeen != time.Minute {
		t.Fatalf("unexpected store call key=%q ttl=%s", storedKey, ttlSeen)
	}

	var resp storedResponse
	if err := json.Unmarshal(stored, &resp); err != nil {
		t.Fatalf("stored response is not json: %v", err)
	}
	if resp.Status != http.StatusCreated || string(resp.Body) != `{"id":"m1"}` {
		t.Fatalf("unexpected stored response %+v", resp)
	}
}

func TestIdempotencyMiddleware_ReleasesFailedResponses(t *testing.T) {
	var completed, released bool
	store := &fakeIdempotencyStore{
		completeFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			completed = true
			return nil
		},
		releaseFn: func(ctx context.Context, key string) error {
			released = true
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})).ServeHTTP(rr, postWithKey("key-fail"))

	if completed {
		t.Fatalf("failed responses must not be stored")
	}
	if !released {
		t.Fatalf("expected the key to be released")
	}
}

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		reserveFn: func(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error) {
			return []byte(`{"status":201,"body":{"id":"m1"}}`), false, nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, postWithKey("key-replay"))

	if called {
		t.Fatalf("handler should not run on replay")
	}
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected replayed status 201, got %d", rr.Code)
	}
	if rr.Header().Get(IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected replay header")
	}
	if rr.Body.String() != `{"id":"m1"}` {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestIdempotencyMiddleware_InProgressConflicts(t *testing.T) {
	store := &fakeIdempotencyStore{
		reserveFn: func(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error) {
			return nil, true, nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	})).ServeHTTP(rr, postWithKey("key-busy"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_SkipsReadsAndMissingKeys(t *testing.T) {
	store := &fakeIdempotencyStore{
		reserveFn: func(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error) {
			return nil, false, errors.New("store must not be used")
		},
	}
	mw := NewIdempotencyMiddleware(store, 0, zerolog.Nop())
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	get := httptest.NewRequest(http.MethodGet, "/api/v1/movements", nil)
	get.Header.Set(IdempotencyKeyHeader, "ignored")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, get)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected GET to pass through, got %d", rr.Code)
	}

	post := httptest.NewRequest(http.MethodPost, "/api/v1/movements", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, post)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected POST without key to pass through, got %d", rr.Code)
	}
}
