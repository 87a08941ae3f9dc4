package redis

import (
	"context"
	"testing"
	"time"
)

func TestIdempotencyStore_ReserveNewKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	stored, inProgress, err := store.Reserve(ctx, "pending", time.Minute)
	if err != nil || inProgress || stored != nil {
		t.Fatalf("unexpected result: stored=%v inProgress=%v err=%v", stored, inProgress, err)
	}

	val, err := client.Get(ctx, store.prefix+"pending").Result()
	if err != nil || val != pendingMarker {
		t.Fatalf("expected placeholder lock, got val=%s err=%v", val, err)
	}

	_, inProgress, err = store.Reserve(ctx, "pending", time.Minute)
	if err != nil || !inProgress {
		t.Fatalf("expected second reservation to see the request in progress, got inProgress=%v err=%v", inProgress, err)
	}
}

func TestIdempotencyStore_ReplaysCompletedResponse(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.Reserve(ctx, "movement-1", time.Minute); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := store.Complete(ctx, "movement-1", []byte(`{"id":"m1"}`), time.Minute); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	stored, inProgress, err := store.Reserve(ctx, "movement-1", time.Minute)
	if err != nil || inProgress {
		t.Fatalf("unexpected result: inProgress=%v err=%v", inProgress, err)
	}
	if string(stored) != `{"id":"m1"}` {
		t.Fatalf("expected stored response, got %s", stored)
	}
}

func TestIdempotencyStore_Release(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.Reserve(ctx, "failed", time.Minute); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := store.Release(ctx, "failed"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	if mr.Exists(store.prefix + "failed") {
		t.Fatalf("expected key to be released")
	}

	stored, inProgress, err := store.Reserve(ctx, "failed", time.Minute)
	if err != nil || inProgress || stored != nil {
		t.Fatalf("expected a fresh reservation, got stored=%v inProgress=%v err=%v", stored, inProgress, err)
	}
}
