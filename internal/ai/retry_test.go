package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hivechat/hivechat/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestWithRetry_succeedsFirstAttempt(t *testing.T) {
	calls := 0
	text, err := withRetry(context.Background(), testutil.TestLogger(t), "test", func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_notConfiguredNotRetried(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), testutil.TestLogger(t), "test", func(ctx context.Context) (string, error) {
		calls++
		return "", fmt.Errorf("%w: missing key", ErrNotConfigured)
	})

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equalf(t, 1, calls, "configuration errors must not be retried, got %d attempts", calls)
}

func TestWithRetry_transientErrorRetried(t *testing.T) {
	if testing.Short() {
		t.Skip("retry backoff sleeps for several seconds")
	}

	calls := 0
	text, err := withRetry(context.Background(), testutil.TestLogger(t), "test", func(ctx context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("rate limited")
		}
		return "recovered", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_exhaustsAttempts(t *testing.T) {
	if testing.Short() {
		t.Skip("retry backoff sleeps for several seconds")
	}

	calls := 0
	lastErr := errors.New("still failing")
	_, err := withRetry(context.Background(), testutil.TestLogger(t), "test", func(ctx context.Context) (string, error) {
		calls++
		return "", lastErr
	})

	assert.ErrorIs(t, err, lastErr)
	assert.Equal(t, maxAttempts, calls)
}

func TestWithRetry_contextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := withRetry(ctx, testutil.TestLogger(t), "test", func(ctx context.Context) (string, error) {
		return "", errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled, "cancellation should interrupt the backoff sleep")
}
