// Package metrics provides the Prometheus registry reference for the
// fetcher. All metrics are defined in their respective packages (client,
// cache, pagination) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the fetcher.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - soda_requests_total{dataset, status} (Counter): Total requests by dataset and HTTP status ("cache" for cache hits)
//   - soda_request_duration_seconds{dataset} (Histogram): Request duration by dataset
//   - soda_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - soda_retries_total{error_class} (Counter): Retry attempts by error class
//   - soda_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - soda_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - soda_cache_hits_total (Counter): Page cache hits
//   - soda_cache_misses_total (Counter): Page cache misses
//   - soda_cache_errors_total{operation} (Counter): Cache operation errors
//
// Pagination Metrics (pkg/pagination):
//   - soda_pages_fetched_total{dataset} (Counter): Pages fetched by dataset
//   - soda_rows_fetched_total{dataset} (Counter): Rows fetched by dataset
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(soda_errors_total[5m])
//
//   # Cache Hit Rate
//   rate(soda_cache_hits_total[5m]) /
//   (rate(soda_cache_hits_total[5m]) + rate(soda_cache_misses_total[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(soda_request_duration_seconds_bucket[5m]))
