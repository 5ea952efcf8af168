package errors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_SucceedsAfterTransientError(t *testing.T) {
	// Given: a function that fails twice then succeeds
	attempts := 0
	fn := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient error")
		}
		return nil
	}

	// When: retrying with default config
	cfg := DefaultRetryConfig()
	cfg.InitialDelay = 10 * time.Millisecond // Speed up test

	err := Retry(context.Background(), cfg, fn)

	// Then: succeeds after 3 attempts
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_FailsAfterMaxRetries(t *testing.T) {
	// Given: a function that always fails
	attempts := 0
	fn := func() error {
		attempts++
		return errors.New("persistent error")
	}

	// When: retrying with 2 max retries
	cfg := RetryConfig{
		MaxRetries:   2,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		Multiplier:   2.0,
	}

	err := Retry(context.Background(), cfg, fn)

	// Then: fails after initial + 2 retries
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "failed after 2 retries")
	assert.ErrorContains(t, err, "persistent error")
}

func TestRetry_StopsOnContextCancellation(t *testing.T) {
	// Given: a cancelled context
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	fn := func() error {
		attempts++
		return errors.New("never succeeds")
	}

	// When: retrying
	err := Retry(ctx, DefaultRetryConfig(), fn)

	// Then: returns context error without attempting
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, attempts)
}

func TestRetry_CancellationDuringBackoffWait(t *testing.T) {
	// Given: a context that cancels while waiting between attempts
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	attempts := 0
	fn := func() error {
		attempts++
		return errors.New("still failing")
	}

	cfg := RetryConfig{
		MaxRetries:   5,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}

	// When: retrying with a long backoff
	err := Retry(ctx, cfg, fn)

	// Then: cancelled during the first wait
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithResult_ReturnsValueOnSuccess(t *testing.T) {
	// Given: a function that fails once then returns a token
	attempts := 0
	fn := func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("not yet")
		}
		return "auth-token", nil
	}

	cfg := DefaultRetryConfig()
	cfg.InitialDelay = 5 * time.Millisecond

	// When: retrying
	result, err := RetryWithResult(context.Background(), cfg, fn)

	// Then: the value from the successful attempt is returned
	require.NoError(t, err)
	assert.Equal(t, "auth-token", result)
	assert.Equal(t, 2, attempts)
}

func TestRetryWithResult_ReturnsZeroValueOnFailure(t *testing.T) {
	fn := func() (int, error) {
		return 42, errors.New("always fails")
	}

	cfg := RetryConfig{
		MaxRetries:   1,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   1.0,
	}

	result, err := RetryWithResult(context.Background(), cfg, fn)

	require.Error(t, err)
	assert.Equal(t, 0, result)
}

func TestRetry_DelayGrowsAndIsCapped(t *testing.T) {
	// Given: a config with a low cap
	cfg := RetryConfig{
		MaxRetries:   3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     15 * time.Millisecond,
		Multiplier:   4.0,
	}

	start := time.Now()
	err := Retry(context.Background(), cfg, func() error {
		return errors.New("fail")
	})
	elapsed := time.Since(start)

	// Then: waits 10ms + 15ms + 15ms between the four attempts
	require.Error(t, err)
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}
