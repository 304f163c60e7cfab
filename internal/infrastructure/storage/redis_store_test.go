package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates an in-memory Redis instance for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(func() {
		mr.Close()
	})

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})
	return mr, client
}

func TestRedisStore_SetGetRemove(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, "device-1")
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "userSession"); err != nil || ok {
		t.Fatalf("Get() on empty store = ok %v, err %v", ok, err)
	}

	if err := store.Set(ctx, "userSession", `{"id":"u-1"}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, err := mr.Get("device:device-1:userSession"); err != nil || got != `{"id":"u-1"}` {
		t.Errorf("raw key = %q, %v", got, err)
	}
	if ttl := mr.TTL("device:device-1:userSession"); ttl != 0 {
		t.Errorf("key TTL = %v, want none", ttl)
	}

	got, ok, err := store.Get(ctx, "userSession")
	if err != nil || !ok || got != `{"id":"u-1"}` {
		t.Errorf("Get() = %q, %v, %v", got, ok, err)
	}

	if err := store.Remove(ctx, "userSession"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok, _ := store.Get(ctx, "userSession"); ok {
		t.Error("key still present after Remove()")
	}

	// removing a missing key is not an error
	if err := store.Remove(ctx, "userSession"); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
}

func TestRedisStore_DevicesAreIsolated(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	a := NewRedisStore(client, "device-a")
	b := NewRedisStore(client, "device-b")

	if err := a.Set(ctx, "userSession", "a"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, _ := b.Get(ctx, "userSession"); ok {
		t.Error("device-b sees device-a's key")
	}
}

func TestRedisStore_ConnectionError(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, "device-1")
	mr.Close()

	if _, _, err := store.Get(context.Background(), "userSession"); err == nil {
		t.Error("Get() with redis down should fail")
	}
	if err := store.Set(context.Background(), "userSession", "x"); err == nil {
		t.Error("Set() with redis down should fail")
	}
}
