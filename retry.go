package watchkeeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	// defaultMaxRetries is the number of additional attempts after the first.
	defaultMaxRetries = 3
	// defaultInitialDelay is the wait before the first retry.
	defaultInitialDelay = 100 * time.Millisecond
	// defaultBackoffFactor multiplies the delay after each retry.
	defaultBackoffFactor = 2.0
)

// retryConfig holds the retry policy. Populated via RetryOption values.
type retryConfig struct {
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
	retryIf       func(error) bool
	onRetry       func(err error, attempt int)
	log           *slog.Logger
}

// RetryOption configures a Retry/RetryWithFallback/SafeExecute call.
type RetryOption func(*retryConfig)

// WithMaxRetries sets the number of additional attempts after the first
// failure; total attempts = n + 1. Negative values mean no retries.
// Default is 3.
func WithMaxRetries(n int) RetryOption {
	return func(c *retryConfig) { c.maxRetries = n }
}

// WithInitialDelay sets the wait before the first retry. Use 0 to retry
// immediately. Default is 100ms.
func WithInitialDelay(d time.Duration) RetryOption {
	return func(c *retryConfig) { c.initialDelay = d }
}

// WithBackoffFactor sets the multiplier applied to the delay after each
// retry. Factors below 1.0 fall back to 1.0 (constant delay). Default is 2.0.
func WithBackoffFactor(f float64) RetryOption {
	return func(c *retryConfig) { c.backoffFactor = f }
}

// WithRetryIf restricts which errors are retried. A non-matching error is
// returned immediately without consuming further attempts. By default every
// error is retryable.
func WithRetryIf(retryable func(error) bool) RetryOption {
	return func(c *retryConfig) {
		if retryable != nil {
			c.retryIf = retryable
		}
	}
}

// WithOnRetry sets an observer called before each retry wait with the error
// and the attempt number (1 for the first retry).
func WithOnRetry(fn func(err error, attempt int)) RetryOption {
	return func(c *retryConfig) { c.onRetry = fn }
}

// WithRetryLogger sets the logger used by RetryWithFallback and SafeExecute
// for final-failure logging. Defaults to the package's default JSON logger.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(c *retryConfig) {
		if logger != nil {
			c.log = logger
		}
	}
}

func applyRetryOptions(opts ...RetryOption) retryConfig {
	c := retryConfig{
		maxRetries:    defaultMaxRetries,
		initialDelay:  defaultInitialDelay,
		backoffFactor: defaultBackoffFactor,
		retryIf:       func(error) bool { return true },
		log:           defaultLogger,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.backoffFactor < 1.0 {
		c.backoffFactor = 1.0
	}
	return c
}

// Retry invokes op until it succeeds, the retry budget is exhausted, a
// non-retryable error occurs, or ctx is cancelled. Waits between attempts
// grow exponentially from the initial delay by the backoff factor. When all
// attempts fail the last error is returned wrapped in ErrRetriesExhausted;
// this variant never swallows failure. Retry is stateless and safe to call
// concurrently; a single invocation runs op sequentially.
func Retry[T any](ctx context.Context, op func(context.Context) (T, error), opts ...RetryOption) (T, error) {
	var zero T
	cfg := applyRetryOptions(opts...)
	delay := cfg.initialDelay

	var lastErr error
	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !cfg.retryIf(err) {
			return zero, err
		}
		if attempt == cfg.maxRetries {
			break
		}

		if cfg.onRetry != nil {
			cfg.onRetry(err, attempt+1)
		}
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		delay = time.Duration(float64(delay) * cfg.backoffFactor)
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, cfg.maxRetries+1, lastErr)
}

// RetryWithFallback behaves like Retry but never propagates failure: when
// every attempt fails (or ctx is cancelled) the final error is logged and
// fallback is returned. Use when the caller has a safe default.
func RetryWithFallback[T any](ctx context.Context, op func(context.Context) (T, error), fallback T, opts ...RetryOption) T {
	cfg := applyRetryOptions(opts...)
	v, err := Retry(ctx, op, opts...)
	if err != nil {
		cfg.log.Error("all retry attempts failed, returning fallback", "attempts", cfg.maxRetries+1, "error", err)
		return fallback
	}
	return v
}

// SafeExecute invokes op exactly once; on any error it logs and returns
// fallback. No retry loop. Only the logger option applies.
func SafeExecute[T any](op func() (T, error), fallback T, opts ...RetryOption) T {
	cfg := applyRetryOptions(opts...)
	v, err := op()
	if err != nil {
		cfg.log.Error("operation failed, returning fallback", "error", err)
		return fallback
	}
	return v
}

// RetryIfIs returns a retry predicate matching any of the given target
// errors with errors.Is. Convenience for WithRetryIf.
func RetryIfIs(targets ...error) func(error) bool {
	return func(err error) bool {
		for _, t := range targets {
			if errors.Is(err, t) {
				return true
			}
		}
		return false
	}
}
