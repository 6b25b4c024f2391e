package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// requires Redis running on localhost:6379; skipped otherwise
const testRedisAddr = "localhost:6379"

func setupTestCache(t *testing.T, prefix string) *Cache {
	t.Helper()

	c := New(redis.NewClient(&redis.Options{Addr: testRedisAddr}), prefix, time.Minute)
	ctx := context.Background()
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	_ = c.DeletePattern(ctx, "*")
	t.Cleanup(func() {
		_ = c.DeletePattern(context.Background(), "*")
		_ = c.Close()
	})
	return c
}

type entry struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestCache_SetGetDelete(t *testing.T) {
	c := setupTestCache(t, "test:catalog:")
	ctx := context.Background()

	var got entry
	hit, err := c.Get(ctx, "missing", &got)
	if err != nil || hit {
		t.Fatalf("expected clean miss, got hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "catalog:published", entry{Name: "Linen Shirt", Price: 1290}); err != nil {
		t.Fatalf("set: %v", err)
	}
	hit, err = c.Get(ctx, "catalog:published", &got)
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if got.Name != "Linen Shirt" || got.Price != 1290 {
		t.Fatalf("unexpected value %+v", got)
	}

	if err := c.DeletePattern(ctx, "catalog:*"); err != nil {
		t.Fatalf("delete pattern: %v", err)
	}
	hit, _ = c.Get(ctx, "catalog:published", &got)
	if hit {
		t.Fatalf("expected miss after invalidation")
	}

	s := c.Snapshot()
	if s.Hits != 1 || s.Misses != 2 || s.Sets != 1 || s.Deletes != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestNoop(t *testing.T) {
	var s Store = Noop{}
	hit, err := s.Get(context.Background(), "k", &entry{})
	if hit || err != nil {
		t.Fatalf("noop must always miss")
	}
}
