package retry

import (
	"context"
	"fmt"
	"time"
)

type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // Exponential backoff
}

func WithRetry(ctx context.Context, config RetryConfig, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err

			if attempt == config.MaxAttempts {
				return fmt.Errorf("failed after %d attempts: %w", config.MaxAttempts, err)
			}

			delay := config.Delay
			if config.Backoff {
				delay = time.Duration(attempt) * config.Delay
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
		return nil
	}

	return lastErr
}

// DefaultFetchDelays is the per-attempt wait used by FetchWithRetry.
var DefaultFetchDelays = []time.Duration{
	500 * time.Millisecond,
	1 * time.Second,
	2 * time.Second,
}

// FetchWithRetry retries fn while it fails OR returns zero items. The search
// API often answers success with an empty tweet list on a cold cache, so an
// empty result counts as a retryable miss. The two exhaustion shapes differ:
// a transport error after the last attempt is returned to the caller, while
// an empty result after the last attempt yields (nil, nil). Callers must
// treat both as failure signals.
func FetchWithRetry[T any](ctx context.Context, delays []time.Duration, fn func() ([]T, error)) ([]T, error) {
	if len(delays) == 0 {
		delays = DefaultFetchDelays
	}

	var lastErr error
	attempts := len(delays)

	for attempt := 0; attempt < attempts; attempt++ {
		items, err := fn()
		if err == nil && len(items) > 0 {
			return items, nil
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
	}
	return nil, nil
}
