// Package cache stores hh.ru API payloads in Redis.
//
// The collector requests the same vacancy detail many times across queries
// ("data science" and "machine learning engineer" overlap heavily) and across
// runs on the same day. When a Redis address is configured the API client
// consults this cache before calling /vacancies/{id} and stores every 200
// response it receives.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	manager := cache.NewManager(redisClient, time.Hour)
//
//	key := cache.Key{Resource: "vacancies", ID: "93353083"}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API, then:
//		entry, _ = cache.ResponseToEntry(resp, manager.DefaultTTL())
//		_ = manager.Set(ctx, key, entry)
//	}
//
// # Expiry
//
// An entry lives until the response's Expires header, or for the manager's
// default TTL when the header is missing or unparsable. Redis removes the key
// on its own once the TTL passes.
//
// # Metrics
//
//   - hh_cache_hits_total - cache hits
//   - hh_cache_misses_total - cache misses
//   - hh_cache_errors_total{operation} - Redis or decode failures
package cache
