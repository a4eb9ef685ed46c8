package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_SetAndGet(t *testing.T) {
	store := NewMemoryStore(DefaultSweepInterval)
	defer store.Close()
	ctx := context.Background()

	payload := []byte(`{"success":true,"data":{"verified":true}}`)
	if err := store.Set(ctx, "GET /wallet/verification", payload, 5*time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry, err := store.Get(ctx, "GET /wallet/verification")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(entry.Payload) != string(payload) {
		t.Errorf("Payload = %s, want %s", entry.Payload, payload)
	}
	if entry.CachedAt.IsZero() {
		t.Error("CachedAt not set")
	}
}

func TestMemoryStore_Get_Miss(t *testing.T) {
	store := NewMemoryStore(DefaultSweepInterval)
	defer store.Close()

	_, err := store.Get(context.Background(), "absent")
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryStore_Get_ExpiryBoundary(t *testing.T) {
	store := NewMemoryStore(DefaultSweepInterval)
	defer store.Close()
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), 50*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Inside the TTL: must be served.
	if _, err := store.Get(ctx, "k"); err != nil {
		t.Fatalf("Get inside TTL failed: %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	// Past the TTL: lazy expiry deletes the entry.
	if _, err := store.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss past TTL, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after lazy expiry", store.Len())
	}
}

func TestMemoryStore_Set_NonPositiveTTL(t *testing.T) {
	store := NewMemoryStore(DefaultSweepInterval)
	defer store.Close()
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := store.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss for non-positive TTL, got %v", err)
	}
}

func TestMemoryStore_Set_Overwrites(t *testing.T) {
	store := NewMemoryStore(DefaultSweepInterval)
	defer store.Close()
	ctx := context.Background()

	store.Set(ctx, "k", []byte("old"), time.Minute)
	store.Set(ctx, "k", []byte("new"), time.Minute)

	entry, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(entry.Payload) != "new" {
		t.Errorf("Payload = %s, want new", entry.Payload)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore(DefaultSweepInterval)
	defer store.Close()
	ctx := context.Background()

	store.Set(ctx, "k", []byte("v"), time.Minute)
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore(DefaultSweepInterval)
	defer store.Close()
	ctx := context.Background()

	store.Set(ctx, "a", []byte("1"), time.Minute)
	store.Set(ctx, "b", []byte("2"), time.Minute)

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after Clear", store.Len())
	}
}

func TestMemoryStore_SweepExpired(t *testing.T) {
	store := NewMemoryStore(DefaultSweepInterval)
	defer store.Close()
	ctx := context.Background()

	store.Set(ctx, "live", []byte("1"), time.Minute)
	store.Set(ctx, "dead1", []byte("2"), 10*time.Millisecond)
	store.Set(ctx, "dead2", []byte("3"), 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)

	removed := store.SweepExpired()
	if removed != 2 {
		t.Errorf("SweepExpired() = %d, want 2", removed)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestMemoryStore_PeriodicSweep(t *testing.T) {
	store := NewMemoryStore(20 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	store.Set(ctx, "dead", []byte("1"), 10*time.Millisecond)

	// The sweep ticker should remove the entry without any Get.
	deadline := time.Now().Add(500 * time.Millisecond)
	for store.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if store.Len() != 0 {
		t.Error("Periodic sweep did not remove expired entry")
	}
}

func TestMemoryStore_Close_Idempotent(t *testing.T) {
	store := NewMemoryStore(DefaultSweepInterval)

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}
}
