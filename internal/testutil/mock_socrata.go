// Package testutil provides testing utilities for the Socrata fetcher.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockSocrata is a configurable mock Socrata server for testing.
type MockSocrata struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount int
	LastQuery    url.Values
	Queries      []url.Values
}

// NewMockSocrata creates a new mock Socrata server.
func NewMockSocrata() *MockSocrata {
	mock := &MockSocrata{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastQuery = r.URL.Query()
		mock.Queries = append(mock.Queries, r.URL.Query())
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		// Unknown dataset
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": true, "message": "Resource not found"}`))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockSocrata) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockSocrata) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockSocrata) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastQuery = nil
	m.Queries = nil
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockSocrata) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// SetHandler sets a custom handler for a dataset's resource path.
func (m *MockSocrata) SetHandler(datasetID string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[resourcePath(datasetID)] = handler
}

// SetResponse configures a fixed response for a dataset.
func (m *MockSocrata) SetResponse(datasetID string, resp MockResponse) {
	m.SetHandler(datasetID, func(w http.ResponseWriter, r *http.Request) {
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetRows serves a fixed row set for a dataset, honoring $limit and $offset
// the way a Socrata endpoint does. When filtered is non-nil it is applied to
// the incoming $where value to choose the row set; a nil filtered serves the
// same rows for every filter.
func (m *MockSocrata) SetRows(datasetID string, rows []map[string]any, filtered func(where string) []map[string]any) {
	m.SetHandler(datasetID, func(w http.ResponseWriter, r *http.Request) {
		matched := rows
		if filtered != nil {
			matched = filtered(r.URL.Query().Get("$where"))
		}

		limit, err := strconv.Atoi(r.URL.Query().Get("$limit"))
		if err != nil || limit <= 0 {
			limit = 1000
		}
		offset, err := strconv.Atoi(r.URL.Query().Get("$offset"))
		if err != nil || offset < 0 {
			offset = 0
		}

		if offset > len(matched) {
			offset = len(matched)
		}
		end := offset + limit
		if end > len(matched) {
			end = len(matched)
		}
		page := matched[offset:end]

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if len(page) == 0 {
			w.Write([]byte(`[]`))
			return
		}
		if err := json.NewEncoder(w).Encode(page); err != nil {
			panic(fmt.Sprintf("encode mock page: %v", err))
		}
	})
}

// NewServerErrorResponse creates a 503 Service Unavailable response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       `{"error": true, "message": "Service unavailable"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": true, "message": "Too many requests"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

func resourcePath(datasetID string) string {
	return "/resource/" + datasetID + ".json"
}
