package stealth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Retry invokes fn up to attempts times, sleeping baseDelay*attempt between
// tries (linear backoff). Every failed attempt is logged under label. After
// exhaustion the last error is returned wrapped, so errors.Is still matches
// it. Network and browser operations against a third-party site are flaky by
// nature; bounded linear backoff recovers most transient failures without
// dragging out the run.
func Retry[T any](ctx context.Context, log *zap.Logger, label string, attempts int, baseDelay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		log.Warn("attempt failed",
			zap.String("op", label),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err))
		if attempt == attempts {
			break
		}
		select {
		case <-time.After(time.Duration(attempt) * baseDelay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	return zero, fmt.Errorf("%s: giving up after %d attempts: %w", label, attempts, lastErr)
}
