package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
)

func testConfig() *Config {
	return &Config{
		APIDelay:          time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxDelay:          20 * time.Millisecond,
		MaxAttempts:       3,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.APIDelay != 200*time.Millisecond {
		t.Errorf("APIDelay = %v, want 200ms", cfg.APIDelay)
	}
	if cfg.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %v, want 2.0", cfg.BackoffMultiplier)
	}
	if cfg.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", cfg.MaxDelay)
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %v, want 5", cfg.MaxAttempts)
	}
}

func TestNewRateLimiter_WithNilConfig(t *testing.T) {
	rl := NewRateLimiter(nil)

	if rl.config.APIDelay != 200*time.Millisecond {
		t.Errorf("Default APIDelay = %v, want 200ms", rl.config.APIDelay)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"api 429", &googleapi.Error{Code: 429, Message: "Quota exceeded"}, true},
		{"api 503", &googleapi.Error{Code: 503}, true},
		{"wrapped api 500", fmt.Errorf("reading Enero!A:AC: %w", &googleapi.Error{Code: 500}), true},
		{"api 400", &googleapi.Error{Code: 400, Message: "Unable to parse range: Agosto!A:AC"}, false},
		{"api 403", &googleapi.Error{Code: 403}, false},
		{"plain 429 text", errors.New("HTTP 429 Too Many Requests"), true},
		{"rate limit text", errors.New("Rate limit reached"), true},
		{"quota text", errors.New("read requests quota exceeded"), true},
		{"other", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRateLimiter_HandleError_ExponentialBackoff(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAttempts = 10
	rl := NewRateLimiter(cfg)
	quotaErr := &googleapi.Error{Code: 429}

	_, w1 := rl.HandleError(quotaErr)
	_, w2 := rl.HandleError(quotaErr)
	_, w3 := rl.HandleError(quotaErr)

	if w1 != time.Millisecond || w2 != 2*time.Millisecond || w3 != 4*time.Millisecond {
		t.Errorf("waits = %v, %v, %v; want 1ms, 2ms, 4ms", w1, w2, w3)
	}
}

func TestRateLimiter_HandleError_MaxDelay(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAttempts = 20
	rl := NewRateLimiter(cfg)

	var wait time.Duration
	for i := 0; i < 10; i++ {
		_, wait = rl.HandleError(&googleapi.Error{Code: 429})
	}
	if wait != cfg.MaxDelay {
		t.Errorf("wait = %v, want capped at %v", wait, cfg.MaxDelay)
	}
}

func TestRateLimiter_HandleError_MaxAttempts(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	quotaErr := &googleapi.Error{Code: 429}

	for i := 0; i < 2; i++ {
		if retry, _ := rl.HandleError(quotaErr); !retry {
			t.Fatalf("attempt %d: expected retry", i+1)
		}
	}
	if retry, _ := rl.HandleError(quotaErr); retry {
		t.Error("expected no retry once MaxAttempts is reached")
	}
}

func TestRateLimiter_Success_ResetsBackoff(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	rl.HandleError(&googleapi.Error{Code: 429})
	rl.HandleError(&googleapi.Error{Code: 429})

	rl.Success()

	if rl.consecutiveErrors != 0 {
		t.Errorf("consecutiveErrors = %d, want 0", rl.consecutiveErrors)
	}
	if rl.currentDelay != rl.config.APIDelay {
		t.Errorf("currentDelay = %v, want %v", rl.currentDelay, rl.config.APIDelay)
	}
}

func TestRateLimiter_ExecuteWithRetry_EventualSuccess(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	calls := 0

	err := rl.ExecuteWithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &googleapi.Error{Code: 503}
		}
		return nil
	})

	if err != nil {
		t.Errorf("ExecuteWithRetry() returned error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRateLimiter_ExecuteWithRetry_NonRetryableError(t *testing.T) {
	rl := NewRateLimiter(testConfig())
	notFound := &googleapi.Error{Code: 400, Message: "Unable to parse range"}
	calls := 0

	err := rl.ExecuteWithRetry(context.Background(), func() error {
		calls++
		return notFound
	})

	if !errors.Is(err, notFound) {
		t.Errorf("err = %v, want %v", err, notFound)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRateLimiter_ExecuteWithRetry_KeepsLastError(t *testing.T) {
	cfg := testConfig()
	rl := NewRateLimiter(cfg)
	quotaErr := &googleapi.Error{Code: 429, Message: "Quota exceeded"}
	calls := 0

	err := rl.ExecuteWithRetry(context.Background(), func() error {
		calls++
		return quotaErr
	})

	if !errors.Is(err, quotaErr) {
		t.Errorf("err = %v, want it to wrap %v", err, quotaErr)
	}
	if calls != cfg.MaxAttempts {
		t.Errorf("calls = %d, want %d", calls, cfg.MaxAttempts)
	}
}

func TestRateLimiter_ExecuteWithRetry_ContextCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDelay = time.Minute
	cfg.APIDelay = time.Second
	cfg.MaxAttempts = 5
	rl := NewRateLimiter(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := rl.ExecuteWithRetry(ctx, func() error {
		return &googleapi.Error{Code: 429}
	})

	if err == nil {
		t.Error("ExecuteWithRetry() should return error when context is done")
	}
}

func TestRateLimiter_ConcurrentAccess(_ *testing.T) {
	rl := NewRateLimiter(testConfig())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				rl.HandleError(&googleapi.Error{Code: 429})
			} else {
				rl.Success()
			}
		}(i)
	}
	wg.Wait()
}
