package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	sentinel := errors.New("down")
	err := Do(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	cfg := fastConfig()
	permanent := errors.New("bad credentials")
	cfg.Retryable = func(err error) bool { return !errors.Is(err, permanent) }

	calls := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return permanent
	})

	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestDoWithNotify_ReportsAttempts(t *testing.T) {
	var attempts []int
	_ = DoWithNotify(context.Background(), fastConfig(), "redis", func(ctx context.Context) error {
		return errors.New("refused")
	}, func(attempt int, err error, next time.Duration) {
		attempts = append(attempts, attempt)
	})

	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDo_AbortsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastConfig(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
