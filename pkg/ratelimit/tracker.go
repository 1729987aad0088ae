package ratelimit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// LowRemainingThreshold is the remaining count below which quota updates are logged at info level.
const LowRemainingThreshold = 10

// Prometheus metrics for rate limit tracking.
var (
	rateLimitRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "github_api_rate_limit_remaining",
		Help: "Requests remaining in the current GitHub rate limit window",
	})

	rateLimitLimit = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "github_api_rate_limit_limit",
		Help: "Request ceiling of the current GitHub rate limit window",
	})

	rateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "github_api_rate_limit_blocks_total",
		Help: "Total number of requests refused because the rate limit was exhausted",
	})
)

// Tracker records the latest observed rate limit and gates requests.
type Tracker struct {
	store  Store
	logger zerolog.Logger
}

// NewTracker creates a new rate limit tracker. A nil store selects a MemoryStore.
func NewTracker(store Store, logger zerolog.Logger) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Tracker{
		store:  store,
		logger: logger,
	}
}

// GetState returns the last observed rate limit, or nil if none was observed.
func (t *Tracker) GetState(ctx context.Context) (*RateLimit, error) {
	rl, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rate limit state: %w", err)
	}
	return rl, nil
}

// Observe stores a freshly extracted rate limit. A nil value is ignored:
// responses without rate limit headers say nothing about the quota.
func (t *Tracker) Observe(ctx context.Context, rl *RateLimit) error {
	if rl == nil {
		return nil
	}
	if err := t.store.Save(ctx, rl); err != nil {
		return fmt.Errorf("save rate limit state: %w", err)
	}

	rateLimitRemaining.Set(float64(rl.Remaining))
	rateLimitLimit.Set(float64(rl.Limit))

	switch {
	case rl.IsExhausted():
		t.logger.Warn().
			Uint64("limit", rl.Limit).
			Time("reset_at", rl.ResetAt()).
			Msg("GitHub rate limit exhausted - requests will be refused until reset")
	case rl.Remaining < LowRemainingThreshold:
		t.logger.Info().
			Uint64("remaining", rl.Remaining).
			Uint64("limit", rl.Limit).
			Time("reset_at", rl.ResetAt()).
			Msg("GitHub rate limit running low")
	default:
		t.logger.Debug().
			Uint64("remaining", rl.Remaining).
			Uint64("limit", rl.Limit).
			Msg("GitHub rate limit state updated")
	}

	return nil
}

// UpdateFromHeaders extracts the rate limit from response headers and stores it.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	return t.Observe(ctx, FromHeaders(headers))
}

// ShouldAllowRequest reports whether a request may be sent. It returns false
// only when the last observed quota is exhausted and its window has not reset.
// It never sleeps.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	rl, err := t.GetState(ctx)
	if err != nil {
		return false, err
	}
	if rl == nil || !rl.NeedsBlock() {
		return true, nil
	}

	t.logger.Warn().
		Uint64("limit", rl.Limit).
		Dur("wait_duration", rl.TimeUntilReset()).
		Msg("GitHub rate limit exhausted - refusing request")

	rateLimitBlocksTotal.Inc()
	return false, nil
}
