package viewcache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheSetAndGet(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	if _, ok := cache.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	cache.Set(ctx, "key", []byte("value"), time.Minute)

	value, ok := cache.Get(ctx, "key")
	if !ok || string(value) != "value" {
		t.Fatalf("expected hit with value, got %q ok=%v", value, ok)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	cache.Set(ctx, "key", []byte("value"), time.Nanosecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := cache.Get(ctx, "key"); ok {
		t.Fatal("expected expired entry to miss")
	}
}
