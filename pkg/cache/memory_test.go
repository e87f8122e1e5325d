package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	type doc struct {
		Region string  `json:"region"`
		Score  float64 `json:"score"`
	}
	if err := mc.Set(ctx, "r1", doc{Region: "PL-MZ", Score: 42.5}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got doc
	if err := mc.Get(ctx, "r1", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Region != "PL-MZ" || got.Score != 42.5 {
		t.Fatalf("got %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var s string
	if err := mc.Get(context.Background(), "absent", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "short", "v", time.Nanosecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(time.Millisecond)

	var s string
	if err := mc.Get(ctx, "short", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expired entry err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheEvictsOldest(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "a", "1", time.Minute); err != nil {
		t.Fatalf("set a: %v", err)
	}
	time.Sleep(time.Millisecond)
	if err := mc.Set(ctx, "b", "2", time.Minute); err != nil {
		t.Fatalf("set b: %v", err)
	}
	time.Sleep(time.Millisecond)
	// touch a so b becomes least recently used
	var s string
	if err := mc.Get(ctx, "a", &s); err != nil {
		t.Fatalf("get a: %v", err)
	}
	time.Sleep(time.Millisecond)
	if err := mc.Set(ctx, "c", "3", time.Minute); err != nil {
		t.Fatalf("set c: %v", err)
	}

	if err := mc.Get(ctx, "b", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("LRU entry should be evicted, err = %v", err)
	}
	if err := mc.Get(ctx, "a", &s); err != nil {
		t.Fatalf("recently used entry evicted: %v", err)
	}
}

func TestMemoryCacheTryLock(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	held, err := mc.TryLock(ctx, "lock:r1", time.Minute)
	if err != nil || !held {
		t.Fatalf("first TryLock = (%v, %v), want (true, nil)", held, err)
	}
	held, err = mc.TryLock(ctx, "lock:r1", time.Minute)
	if err != nil || held {
		t.Fatalf("second TryLock = (%v, %v), want (false, nil)", held, err)
	}
	if err := mc.Unlock(ctx, "lock:r1"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	held, err = mc.TryLock(ctx, "lock:r1", time.Minute)
	if err != nil || !held {
		t.Fatalf("TryLock after unlock = (%v, %v), want (true, nil)", held, err)
	}
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "history:PL-MZ:90", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := mc.DeleteByPattern(ctx, "history:PL-MZ:*"); err != nil {
		t.Fatalf("delete by pattern: %v", err)
	}
	var s string
	if err := mc.Get(ctx, "history:PL-MZ:90", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}
}
