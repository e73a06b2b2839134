// Package cache provides an optional Redis-backed page cache for Socrata
// resource queries.
//
// Socrata resource endpoints are plain GETs with no cache validators (no
// ETag, no usable Expires header), so entries are stored under a fixed,
// configurable TTL. A cached page makes re-runs of an identical pull within
// the TTL free.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient, 15*time.Minute)
//
//	key := cache.Key{
//		DatasetID:   "wujg-7c2s",
//		QueryParams: url.Values{"$limit": []string{"25000"}},
//	}
//
//	data, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch from Socrata, then manager.Set(ctx, key, body)
//	}
//
// # Metrics
//
// The manager exports Prometheus metrics:
//
//   - soda_cache_hits_total - Cache hits
//   - soda_cache_misses_total - Cache misses
//   - soda_cache_errors_total{operation} - Cache operation errors
package cache
