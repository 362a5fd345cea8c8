// Package metrics exposes the collector's Prometheus metrics over HTTP.
// All metrics are defined in their respective packages (hh, cache, throttle)
// to keep the packages independent; this package serves them and documents them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the Prometheus registry every package registers with via promauto.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the registry the /metrics endpoint serves.
var Gatherer = prometheus.DefaultGatherer

// Metrics Documentation
//
// Request Metrics (pkg/hh):
//   - hh_requests_total{endpoint, status} (Counter): Requests by endpoint template and HTTP status
//   - hh_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint template
//   - hh_errors_total{class} (Counter): Failures by class (client, server, network, decode)
//
// Cache Metrics (pkg/cache):
//   - hh_cache_hits_total (Counter): Vacancy details served from Redis
//   - hh_cache_misses_total (Counter): Vacancy details not found in Redis
//   - hh_cache_errors_total{operation} (Counter): Redis failures by operation (get, set, delete)
//
// Throttle Metrics (pkg/throttle):
//   - hh_throttle_pauses_total{kind} (Counter): Pauses by kind (item, page)
//
// Example Prometheus Queries:
//
//	# Detail cache hit rate
//	sum(rate(hh_cache_hits_total[5m])) /
//	(sum(rate(hh_cache_hits_total[5m])) + sum(rate(hh_cache_misses_total[5m])))
//
//	# Rejected search pages
//	sum(hh_requests_total{endpoint="/vacancies", status!="200"})
//
//	# P95 detail latency
//	histogram_quantile(0.95, rate(hh_request_duration_seconds_bucket{endpoint="/vacancies/{id}"}[5m]))
