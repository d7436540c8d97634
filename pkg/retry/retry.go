package retry

import (
	"context"
	"fmt"
	"time"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	MaxTotalTimeout time.Duration
	// Retryable decides whether an error is worth another attempt. Nil means
	// every error is retried.
	Retryable func(error) bool
}

// DefaultConfig returns a retry configuration suited to probing a
// dependency at startup (about 15s worst case).
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     6,
		InitialDelay:    250 * time.Millisecond,
		MaxDelay:        4 * time.Second,
		BackoffFactor:   2.0,
		MaxTotalTimeout: 15 * time.Second,
	}
}

// Do executes fn with exponential backoff
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	return DoWithNotify(ctx, cfg, "", fn, nil)
}

// DoWithNotify executes fn with exponential backoff and reports every failed
// attempt that will be retried.
func DoWithNotify(ctx context.Context, cfg Config, name string, fn func(ctx context.Context) error, notify func(attempt int, err error, nextDelay time.Duration)) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxTotalTimeout)
		defer cancel()
	}

	prefix := ""
	if name != "" {
		prefix = name + ": "
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%sretry aborted after %d attempts: %w (last error: %v)", prefix, attempt-1, err, lastErr)
			}
			return fmt.Errorf("%sretry aborted: %w", prefix, err)
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			return fmt.Errorf("%smax retry attempts (%d) exceeded: %w", prefix, cfg.MaxAttempts, lastErr)
		}

		if notify != nil {
			notify(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%sretry aborted after %d attempts: %w (last error: %v)", prefix, attempt, ctx.Err(), lastErr)
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("%smax retry attempts exceeded: %w", prefix, lastErr)
}
