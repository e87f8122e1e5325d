package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service is the injectable cache the history provider and refresh
// workers share. Implementations must be safe for concurrent use.
// TryLock/Unlock back the cross-worker refresh guard; everything else
// is plain keyed storage.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// GetTyped fetches a single key into a typed value. The bool result is
// false on a miss; other errors pass through.
func GetTyped[T any](ctx context.Context, c Service, key string) (T, bool, error) {
	var obj T
	err := c.Get(ctx, key, &obj)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return obj, false, nil
		}
		return obj, false, err
	}
	return obj, true, nil
}
