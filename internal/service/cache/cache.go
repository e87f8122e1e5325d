package cache

import (
	"time"

	"RegionPulse/pkg/config"
)

// BytesCache is a minimal cache API storing raw bytes with TTL. Handlers
// use it to memoize rendered response payloads per region.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}

// FromConfig picks the response-cache backend: Redis when configured and
// enabled, otherwise the in-process TTL cache.
func FromConfig(cfg *config.Config) BytesCache {
	if cfg.Cache.Mode == "redis" && cfg.Redis.Enabled {
		return NewRedisCache(RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	maxSize := cfg.Cache.MaxSize
	if maxSize <= 0 {
		maxSize = 4096
	}
	return NewTTLCache(maxSize)
}
