// Package client provides the read-only GitHub REST client: one authenticated
// GET gateway, typed envelopes, a pagination cursor and single-page helpers.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/github-api-client/pkg/logging"
	"github.com/Sternrassler/github-api-client/pkg/pagination"
	"github.com/Sternrassler/github-api-client/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public GitHub REST API.
	DefaultBaseURL = "https://api.github.com"

	// DefaultPerPage is the page size requested from collection endpoints.
	DefaultPerPage = 100

	// DefaultTimeout bounds a single round trip.
	DefaultTimeout = 30 * time.Second

	// MediaType is sent as the Accept header and pins the v3 representation.
	MediaType = "application/vnd.github.v3+json"
)

// Prometheus metrics for GitHub client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "github_api_requests_total",
		Help: "Total GitHub API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "github_api_request_duration_seconds",
		Help:    "GitHub API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "github_api_errors_total",
		Help: "Total GitHub API failures by kind",
	}, []string{"kind"})

	pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "github_api_pages_total",
		Help: "Total collection pages delivered by paginators",
	}, []string{"endpoint"})
)

// Client is the GitHub API client. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tracker    *ratelimit.Tracker
	limiter    *rate.Limiter
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API (default: https://api.github.com)
	BaseURL string

	// Basic auth credentials. A personal access token works as Password.
	Username string
	Password string

	// User-Agent header (REQUIRED by GitHub)
	UserAgent string

	// Timeout of a single round trip. Ignored when HTTPClient is set.
	Timeout time.Duration

	// PerPage is the page size for collection requests (default: 100)
	PerPage int

	// CheckStatus turns non-2xx responses into KindUpstream errors.
	// When false the body is handed to the decoder regardless of status.
	CheckStatus bool

	// Pacing. RequestsPerSecond 0 disables the limiter.
	RequestsPerSecond float64
	Burst             int

	// BlockWhenExhausted refuses requests while the last observed quota
	// is exhausted and its window has not reset.
	BlockWhenExhausted bool

	// RateLimitStore keeps the last observed quota (default: in memory)
	RateLimitStore ratelimit.Store

	// Logger (default: component logger "github-client")
	Logger *zerolog.Logger

	// HTTPClient overrides the transport (default: http.Client with Timeout)
	HTTPClient *http.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(username, password, userAgent string) Config {
	return Config{
		BaseURL:            DefaultBaseURL,
		Username:           username,
		Password:           password,
		UserAgent:          userAgent,
		Timeout:            DefaultTimeout,
		PerPage:            DefaultPerPage,
		BlockWhenExhausted: true,
	}
}

// New creates a new GitHub client.
func New(cfg Config) (*Client, error) {
	if cfg.Username == "" {
		return nil, fmt.Errorf("username is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url: must be absolute (got %q)", cfg.BaseURL)
	}

	if cfg.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("requests_per_second must be >= 0 (got %v)", cfg.RequestsPerSecond)
	}

	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	var logger zerolog.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	} else {
		logger = logging.NewLogger("github-client")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(base.String(), "/"),
		tracker:    ratelimit.NewTracker(cfg.RateLimitStore, logger),
		limiter:    limiter,
		config:     cfg,
		logger:     logger,
	}, nil
}

// Response is the outcome of one successful round trip.
type Response struct {
	Body       string
	StatusCode int
	Status     string
	RateLimit  *ratelimit.RateLimit
	Links      []pagination.Link
	// NextPage is the page of the "next" link, 0 if there is none.
	NextPage int
}

// Fetch performs one authenticated GET of {BaseURL}/{path}?per_page={perPage}&page={page}.
// perPage <= 0 selects the configured page size. No retry is attempted.
func (c *Client) Fetch(ctx context.Context, path string, page, perPage int) (*Response, error) {
	endpoint := strings.TrimPrefix(path, "/")
	if page < 1 {
		return nil, c.fail(&APIError{
			Kind:     KindTransport,
			Endpoint: endpoint,
			Err:      fmt.Errorf("%w (got %d)", ErrInvalidPage, page),
		})
	}
	if perPage <= 0 {
		perPage = c.config.PerPage
	}
	route := routeOf(endpoint)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(route).Observe(time.Since(startTime).Seconds())
	}()

	if c.config.BlockWhenExhausted {
		allowed, err := c.tracker.ShouldAllowRequest(ctx)
		if err != nil {
			// An unreadable store must not stop reads.
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Rate limit check failed")
		} else if !allowed {
			requestsTotal.WithLabelValues(route, "rate_limited").Inc()
			return nil, c.fail(&APIError{Kind: KindRateLimited, Endpoint: endpoint, Err: ErrRateLimited})
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.fail(&APIError{Kind: KindTransport, Endpoint: endpoint, Err: err})
		}
	}

	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	target := fmt.Sprintf("%s/%s%sper_page=%d&page=%d", c.baseURL, endpoint, sep, perPage, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, c.fail(&APIError{Kind: KindTransport, Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)})
	}
	req.SetBasicAuth(c.config.Username, c.config.Password)
	req.Header.Set("Accept", MediaType)
	req.Header.Set("User-Agent", c.config.UserAgent)

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("page", page).
		Int("per_page", perPage).
		Msg("Executing GitHub request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(route, "network_error").Inc()
		return nil, c.fail(&APIError{Kind: KindTransport, Endpoint: endpoint, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		requestsTotal.WithLabelValues(route, "network_error").Inc()
		return nil, c.fail(&APIError{
			Kind:       KindTransport,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        fmt.Errorf("read body: %w", err),
		})
	}
	requestsTotal.WithLabelValues(route, strconv.Itoa(resp.StatusCode)).Inc()

	rl := ratelimit.FromHeaders(resp.Header)
	if err := c.tracker.Observe(ctx, rl); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to record rate limit")
	}

	links := pagination.LinksFromHeader(resp.Header)
	next, _ := pagination.NextPage(links)

	event := c.logger.Debug().
		Str("endpoint", endpoint).
		Int("page", page).
		Int("status", resp.StatusCode).
		Int("next_page", next)
	if rl != nil {
		event = event.Uint64("rate_remaining", rl.Remaining)
	}
	event.Msg("GitHub request completed")

	if c.config.CheckStatus && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return nil, c.fail(&APIError{
			Kind:       KindUpstream,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		})
	}

	return &Response{
		Body:       string(body),
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		RateLimit:  rl,
		Links:      links,
		NextPage:   next,
	}, nil
}

// routeOf strips owner, repository and query from an endpoint so that metric
// labels stay bounded: "repos/octo/hello/tags" becomes "repos/{owner}/{repo}/tags".
func routeOf(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	parts := strings.SplitN(endpoint, "/", 4)
	if len(parts) >= 3 && parts[0] == "repos" {
		parts[1], parts[2] = "{owner}", "{repo}"
	}
	return strings.Join(parts, "/")
}

// fail counts the failure and returns it.
func (c *Client) fail(err *APIError) error {
	errorsTotal.WithLabelValues(string(err.Kind)).Inc()
	c.logger.Debug().
		Str("endpoint", err.Endpoint).
		Str("kind", string(err.Kind)).
		Int("status", err.StatusCode).
		Msg("GitHub request failed")
	return err
}

// RateLimit returns the last observed quota, or nil if no response carried one.
func (c *Client) RateLimit(ctx context.Context) (*ratelimit.RateLimit, error) {
	return c.tracker.GetState(ctx)
}

// PerPage returns the configured page size.
func (c *Client) PerPage() int {
	return c.config.PerPage
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
