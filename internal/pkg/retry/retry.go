package retry

import (
	"context"
	"fmt"
	"math"
	"time"
)

type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// CalculateDelay returns InitialDelay * 2^attempt, capped at MaxDelay.
func CalculateDelay(attempt int, cfg Config) time.Duration {
	delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(2, float64(attempt)))
	if delay > cfg.MaxDelay || delay < 0 {
		delay = cfg.MaxDelay
	}
	return delay
}

// Do runs fn until it succeeds, retryable reports false, or MaxRetries
// retries are used up. onRetry, if set, is called before each retry.
func Do(ctx context.Context, cfg Config, retryable func(error) bool, onRetry func(attempt int, err error), fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if onRetry != nil {
				onRetry(attempt, lastErr)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(CalculateDelay(attempt-1, cfg)):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if retryable != nil && !retryable(err) {
			return err
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
