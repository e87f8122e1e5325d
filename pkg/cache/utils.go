package cache

import "fmt"

// GenerateKey joins a prefix and an identifier into a cache key.
func GenerateKey(prefix string, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// GenerateKeyWithParams appends each parameter as a colon-separated key
// segment, e.g. "regionpulse:history:EU:90:2026-08-28".
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key = fmt.Sprintf("%s:%v", key, param)
	}
	return key
}

// BuildPattern turns a key prefix into a glob matching every key under
// it, for DeleteByPattern.
func BuildPattern(prefix string) string {
	return fmt.Sprintf("%s*", prefix)
}
