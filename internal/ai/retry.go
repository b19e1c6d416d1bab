package ai

import (
	"context"
	"errors"
	"log"
	"time"
)

const (
	maxAttempts   = 3
	retryBaseWait = 4 * time.Second
	retryMaxWait  = 10 * time.Second
)

// withRetry runs fn up to maxAttempts times with exponential backoff.
// ErrNotConfigured aborts immediately, as does context cancellation.
func withRetry(ctx context.Context, logger *log.Logger, provider string, fn func(context.Context) (string, error)) (string, error) {
	var lastErr error
	wait := retryBaseWait

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := fn(ctx)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, ErrNotConfigured) {
			return "", err
		}
		lastErr = err
		logger.Printf("%s request failed (attempt %d/%d): %s", provider, attempt, maxAttempts, err)

		if attempt == maxAttempts {
			break
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}

		wait *= 2
		if wait > retryMaxWait {
			wait = retryMaxWait
		}
	}

	return "", lastErr
}
