// Package client provides the Socrata HTTP transport with automatic retry,
// optional page caching, and error classification.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/transitlab/sodafetch/pkg/cache"
)

// Prometheus metrics for Socrata requests.
var (
	sodaRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soda_requests_total",
		Help: "Total Socrata requests by dataset and status",
	}, []string{"dataset", "status"})

	sodaRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "soda_request_duration_seconds",
		Help:    "Socrata request duration in seconds by dataset",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 180},
	}, []string{"dataset"})

	sodaErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soda_errors_total",
		Help: "Total Socrata errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of HTTP errors.
type ErrorClass string

const (
	// ErrorClassClient represents terminal, non-retryable HTTP errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents transient 5xx server errors (500, 502, 503, 504).
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 rate limit errors.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents connect/read errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Config holds the client configuration.
type Config struct {
	// Domain is the Socrata provider base URL (e.g., "https://data.ny.gov").
	Domain string

	// AppToken is the optional Socrata application token (X-App-Token header).
	AppToken string

	// UserAgent identifies this client to the provider.
	UserAgent string

	// ConnectTimeout bounds connection establishment per request.
	ConnectTimeout time.Duration

	// ReadTimeout bounds the full request including body read.
	ReadTimeout time.Duration

	// PoolSize is the idle connection pool size.
	PoolSize int

	// Retry configures the transient-failure retry policy.
	Retry RetryConfig

	// Cache is an optional Redis-backed page cache. Nil disables caching.
	Cache *cache.Manager
}

// DefaultConfig returns a safe default configuration for a Socrata domain.
// Timeouts and pool size are sized for the large hourly-ridership pulls.
func DefaultConfig(domain string) Config {
	return Config{
		Domain:         domain,
		UserAgent:      "sodafetch/1.0",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    180 * time.Second,
		PoolSize:       10,
		Retry:          DefaultRetryConfig(),
	}
}

// Client is the Socrata HTTP client. It is constructed once at process
// start, passed into every fetch, and holds the only connection pool.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new Socrata client.
func New(cfg Config) (*Client, error) {
	if cfg.Domain == "" {
		return nil, fmt.Errorf("domain is required")
	}
	if _, err := url.Parse(cfg.Domain); err != nil {
		return nil, fmt.Errorf("invalid domain %q: %w", cfg.Domain, err)
	}

	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 180 * time.Second
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 10
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		MaxIdleConns:        cfg.PoolSize,
		MaxIdleConnsPerHost: cfg.PoolSize,
	}

	logger := log.With().Str("component", "soda-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.ReadTimeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// FetchPage performs one GET against {domain}/resource/{datasetID}.json with
// the given query parameters and returns the raw response body. Transient
// failures (429, 500, 502, 503, 504, network) are retried with backoff; any
// other non-2xx status is returned as an *APIError without retry.
func (c *Client) FetchPage(ctx context.Context, datasetID string, params url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/resource/%s.json", strings.TrimRight(c.config.Domain, "/"), datasetID)

	startTime := time.Now()
	defer func() {
		sodaRequestDuration.WithLabelValues(datasetID).Observe(time.Since(startTime).Seconds())
	}()

	cacheKey := cache.Key{DatasetID: datasetID, QueryParams: params}
	if c.config.Cache != nil {
		data, err := c.config.Cache.Get(ctx, cacheKey)
		if err == nil {
			c.logger.Debug().
				Str("dataset_id", datasetID).
				Int("bytes", len(data)).
				Msg("Page served from cache")
			sodaRequestsTotal.WithLabelValues(datasetID, "cache").Inc()
			return data, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("dataset_id", datasetID).Msg("Cache get error")
		}
	}

	var body []byte

	retryErr := retryWithBackoff(ctx, c.config.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.URL.RawQuery = params.Encode()
		req.Header.Set("Accept", "application/json")
		if c.config.UserAgent != "" {
			req.Header.Set("User-Agent", c.config.UserAgent)
		}
		if c.config.AppToken != "" {
			req.Header.Set("X-App-Token", c.config.AppToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error().Err(err).Str("dataset_id", datasetID).Msg("HTTP request failed")
			sodaErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			sodaRequestsTotal.WithLabelValues(datasetID, "network_error").Inc()
			return &APIError{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			errClass := classifyStatus(resp.StatusCode)
			sodaErrorsTotal.WithLabelValues(string(errClass)).Inc()
			sodaRequestsTotal.WithLabelValues(datasetID, fmt.Sprintf("%d", resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("dataset_id", datasetID).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Socrata request error")

			return &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Message:    resp.Status,
			}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			sodaErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return &APIError{ErrorClass: ErrorClassNetwork, Message: "read body", Err: err}
		}

		sodaRequestsTotal.WithLabelValues(datasetID, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return nil
	}, classifyError)

	if retryErr != nil {
		return nil, retryErr
	}

	if c.config.Cache != nil {
		if err := c.config.Cache.Set(ctx, cacheKey, body); err != nil {
			c.logger.Warn().Err(err).Str("dataset_id", datasetID).Msg("Failed to cache page")
		}
	}

	return body, nil
}

// classifyStatus categorizes a non-2xx status code. Only 429 and the
// transient 5xx set (500, 502, 503, 504) classify as retryable; everything
// else is a terminal client-side failure.
func classifyStatus(status int) ErrorClass {
	switch status {
	case http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return ErrorClassServer
	}
	if status >= 400 {
		return ErrorClassClient
	}
	return ""
}

// classifyError extracts the error class for retry decisions.
func classifyError(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorClass
	}
	return ErrorClassNetwork
}

// Close releases the client's idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
