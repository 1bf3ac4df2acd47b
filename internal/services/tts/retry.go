package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"slidemovie/internal/logging"
)

// Retry retries a Synthesizer a bounded number of times with a fixed cooldown
// between attempts. Quota exhaustion and context cancellation stop
// immediately.
type Retry struct {
	next     Synthesizer
	attempts int
	cooldown time.Duration
	sleeper  func(time.Duration)
	logger   *slog.Logger
}

// RetryOption customizes a Retry.
type RetryOption func(*Retry)

// WithSleeper overrides how cooldowns are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) RetryOption {
	return func(r *Retry) {
		r.sleeper = sleeper
	}
}

// WithLogger attaches a logger for attempt failures.
func WithLogger(logger *slog.Logger) RetryOption {
	return func(r *Retry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRetry wraps next. attempts counts the first call; values below one are
// treated as one.
func NewRetry(next Synthesizer, attempts int, cooldown time.Duration, opts ...RetryOption) *Retry {
	if attempts < 1 {
		attempts = 1
	}
	r := &Retry{
		next:     next,
		attempts: attempts,
		cooldown: cooldown,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Synthesize implements Synthesizer.
func (r *Retry) Synthesize(ctx context.Context, req Request, outPath string) error {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err := r.next.Synthesize(ctx, req, outPath)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrQuotaExhausted) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		lastErr = err
		if attempt == r.attempts {
			break
		}
		r.logger.Warn("tts attempt failed; cooling down",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", r.attempts),
			logging.Duration("cooldown", r.cooldown),
			logging.Error(err),
		)
		if err := r.sleep(ctx); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, r.attempts, lastErr)
}

func (r *Retry) sleep(ctx context.Context) error {
	if r.cooldown <= 0 {
		return ctx.Err()
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if r.sleeper != nil {
		r.sleeper(r.cooldown)
		return ctx.Err()
	}
	timer := time.NewTimer(r.cooldown)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
