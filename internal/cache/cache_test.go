package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemory()
	store.Set(ctx, "key", "value", 0)

	got, ok := store.Get(ctx, "key")
	if !ok || got != "value" {
		t.Errorf("Get = (%q, %v), want (value, true)", got, ok)
	}

	if _, ok := store.Get(ctx, "missing"); ok {
		t.Error("Get returned true for missing key")
	}

	store.Delete(ctx, "key")
	if _, ok := store.Get(ctx, "key"); ok {
		t.Error("Get returned true after Delete")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &memoryStore{
		data: make(map[string]memoryEntry),
		now:  func() time.Time { return current },
	}

	store.Set(ctx, "ttl", "value", 10*time.Minute)
	store.Set(ctx, "forever", "value", 0)

	if _, ok := store.Get(ctx, "ttl"); !ok {
		t.Fatal("entry missing before expiry")
	}

	current = current.Add(11 * time.Minute)

	if _, ok := store.Get(ctx, "ttl"); ok {
		t.Error("entry still readable after expiry")
	}
	if _, ok := store.Get(ctx, "forever"); !ok {
		t.Error("zero-ttl entry expired")
	}

	// Expired entries are removed on read, not just hidden.
	store.mu.RLock()
	_, present := store.data["ttl"]
	store.mu.RUnlock()
	if present {
		t.Error("expired entry not dropped from the map")
	}
}
