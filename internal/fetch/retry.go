package fetch

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net"
	"time"

	"go.uber.org/zap"
)

// retryConfig controls download retries with exponential backoff and jitter.
// Supplier FTP drops and budget web hosts fail transiently all the time; a
// couple of retries saves most overnight imports.
type retryConfig struct {
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	multiplier     float64
	jitterFraction float64
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		maxAttempts:    3,
		initialBackoff: 500 * time.Millisecond,
		maxBackoff:     10 * time.Second,
		multiplier:     2.0,
		jitterFraction: 0.25,
	}
}

// withRetry executes fn, retrying transient failures. Context cancellation
// stops retries immediately.
func withRetry(ctx context.Context, cfg retryConfig, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == cfg.maxAttempts || !isTransient(lastErr) {
			return lastErr
		}

		delay := backoff(cfg, attempt)
		zap.L().Warn("fetch: transient failure, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(lastErr),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

func backoff(cfg retryConfig, attempt int) time.Duration {
	d := float64(cfg.initialBackoff) * math.Pow(cfg.multiplier, float64(attempt-1))
	d = math.Min(d, float64(cfg.maxBackoff))
	jitter := 1 + cfg.jitterFraction*(2*rand.Float64()-1)
	return time.Duration(d * jitter)
}

// isTransient reports whether a download failure is worth retrying: network
// timeouts, connection resets, and server-side HTTP errors.
func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var status *statusError
	if errors.As(err, &status) {
		return status.code >= 500 || status.code == 429
	}
	return false
}
