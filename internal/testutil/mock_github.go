// Package testutil provides testing utilities for the GitHub client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// RecordedRequest is one request seen by the mock server.
type RecordedRequest struct {
	Path    string
	Page    int
	PerPage int
	Header  http.Header
}

// MockGitHub is a configurable mock GitHub API server for testing.
// Unknown paths answer 404 with a GitHub-style error body.
type MockGitHub struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	rateLimit [3]uint64 // limit, remaining, reset
	withRate  bool

	requests []RecordedRequest
}

// NewMockGitHub creates a new mock GitHub server.
func NewMockGitHub() *MockGitHub {
	mock := &MockGitHub{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

		mock.mu.Lock()
		mock.requests = append(mock.requests, RecordedRequest{
			Path:    r.URL.Path,
			Page:    page,
			PerPage: perPage,
			Header:  r.Header.Clone(),
		})
		handler, exists := mock.handlers[r.URL.Path]
		if mock.withRate {
			w.Header().Set("X-RateLimit-Limit", strconv.FormatUint(mock.rateLimit[0], 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatUint(mock.rateLimit[1], 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatUint(mock.rateLimit[2], 10))
		}
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found","documentation_url":"https://docs.github.com/rest"}`))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockGitHub) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockGitHub) Close() {
	m.server.Close()
}

// Reset clears recorded requests.
func (m *MockGitHub) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// SetRateLimit makes every response carry the three rate limit headers.
func (m *MockGitHub) SetRateLimit(limit, remaining, reset uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimit = [3]uint64{limit, remaining, reset}
	m.withRate = true
}

// SetHandler sets a custom handler for a specific path.
func (m *MockGitHub) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockGitHub) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetCollection serves items (raw JSON objects) as a paginated collection.
// The page and per_page query parameters select the slice, and Link headers
// point at the neighbouring pages the way GitHub does.
func (m *MockGitHub) SetCollection(path string, items []string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}
		perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
		if err != nil || perPage < 1 {
			perPage = 30
		}

		start := (page - 1) * perPage
		end := start + perPage
		if start > len(items) {
			start = len(items)
		}
		if end > len(items) {
			end = len(items)
		}

		lastPage := (len(items) + perPage - 1) / perPage
		if lastPage < 1 {
			lastPage = 1
		}

		var links []string
		link := func(p int, rel string) {
			links = append(links, fmt.Sprintf(`<%s%s?per_page=%d&page=%d>; rel="%s"`, m.server.URL, path, perPage, p, rel))
		}
		if page > 1 {
			link(page-1, "prev")
		}
		if page < lastPage {
			link(page+1, "next")
			link(lastPage, "last")
		}
		if page > 1 {
			link(1, "first")
		}
		if len(links) > 0 {
			w.Header().Set("Link", strings.Join(links, ", "))
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("[" + strings.Join(items[start:end], ",") + "]"))
	})
}

// Requests returns a copy of the recorded requests.
func (m *MockGitHub) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockGitHub) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// RequestedPages returns the page parameter of every request to path, in order.
func (m *MockGitHub) RequestedPages(path string) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var pages []int
	for _, r := range m.requests {
		if r.Path == path {
			pages = append(pages, r.Page)
		}
	}
	return pages
}

// NewJSONResponse creates a 200 OK JSON response.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitedResponse creates the 403 GitHub sends once the quota is spent.
func NewRateLimitedResponse(limit uint64, reset time.Time) MockResponse {
	return MockResponse{
		StatusCode: http.StatusForbidden,
		Body:       `{"message":"API rate limit exceeded","documentation_url":"https://docs.github.com/rest/overview/resources-in-the-rest-api#rate-limiting"}`,
		Headers: map[string]string{
			"X-RateLimit-Limit":     strconv.FormatUint(limit, 10),
			"X-RateLimit-Remaining": "0",
			"X-RateLimit-Reset":     strconv.FormatInt(reset.Unix(), 10),
			"Content-Type":          "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message":"Server Error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
