// Package ratelimit paces calls to the Google Sheets API and retries the
// ones rejected for quota or transient server errors.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
)

// RateLimiter spaces API calls and backs off exponentially on retryable errors
type RateLimiter struct {
	limiter           *rate.Limiter
	mu                sync.Mutex
	consecutiveErrors int
	currentDelay      time.Duration
	config            *Config
}

// Config holds rate limiter configuration
type Config struct {
	APIDelay          time.Duration
	BackoffMultiplier float64
	MaxDelay          time.Duration
	MaxAttempts       int
}

// DefaultConfig returns the pacing used for the Sheets read quota
func DefaultConfig() *Config {
	return &Config{
		APIDelay:          200 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxDelay:          30 * time.Second,
		MaxAttempts:       5,
	}
}

// NewRateLimiter creates a new rate limiter; nil cfg uses DefaultConfig
func NewRateLimiter(cfg *Config) *RateLimiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &RateLimiter{
		limiter:      rate.NewLimiter(limitFor(cfg.APIDelay), 1),
		currentDelay: cfg.APIDelay,
		config:       cfg,
	}
}

func limitFor(delay time.Duration) rate.Limit {
	if delay <= 0 {
		return rate.Inf
	}
	return rate.Every(delay)
}

// Wait blocks until the rate limiter allows the request
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// IsRetryable reports whether err is a quota or transient server error.
// Google API errors are classified by status code; other errors by message.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota exceeded")
}

// HandleError records a failed call and returns whether to retry and how long to wait
func (r *RateLimiter) HandleError(err error) (shouldRetry bool, waitTime time.Duration) {
	if !IsRetryable(err) {
		return false, 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.consecutiveErrors++
	waitTime = time.Duration(math.Min(
		float64(r.config.APIDelay)*math.Pow(r.config.BackoffMultiplier, float64(r.consecutiveErrors-1)),
		float64(r.config.MaxDelay),
	))

	// Slow down every caller, not just this retry
	if waitTime > r.currentDelay {
		r.currentDelay = waitTime
		r.limiter.SetLimit(limitFor(waitTime))
	}

	return r.consecutiveErrors < r.config.MaxAttempts, waitTime
}

// Success resets the backoff after a successful call
func (r *RateLimiter) Success() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.consecutiveErrors > 0 {
		r.consecutiveErrors = 0
		r.currentDelay = r.config.APIDelay
		r.limiter.SetLimit(limitFor(r.config.APIDelay))
	}
}

// ExecuteWithRetry runs fn under the rate limit, retrying retryable errors
// until MaxAttempts is reached. The last error is returned.
func (r *RateLimiter) ExecuteWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if err := r.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}

		lastErr = fn()
		if lastErr == nil {
			r.Success()
			return nil
		}

		shouldRetry, waitTime := r.HandleError(lastErr)
		if !shouldRetry {
			return lastErr
		}

		slog.Debug("Retrying Sheets API call", "attempt", attempt, "wait", waitTime, "error", lastErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return fmt.Errorf("max retry attempts (%d) exceeded: %w", r.config.MaxAttempts, lastErr)
}
