package database

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBaseWait = 1 * time.Second
	retryJitterFraction  = 0.25
)

// retryBackoff returns the wait before retry attempt (0-indexed): 1s, 2s, 4s
// with ±25% jitter.
func retryBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := defaultRetryBaseWait << attempt
	jitter := time.Duration(float64(base) * retryJitterFraction * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter
	return base + jitter
}

// connectWithRetry runs connect up to defaultRetryAttempts times, waiting
// retryBackoff between attempts. Stores are often started alongside the
// service in compose setups and come up a little later.
func connectWithRetry(ctx context.Context, system string, logger *slog.Logger, connect func(context.Context) error) error {
	return connectWithBackoff(ctx, system, logger, retryBackoff, connect)
}

func connectWithBackoff(ctx context.Context, system string, logger *slog.Logger, backoff func(int) time.Duration, connect func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < defaultRetryAttempts; attempt++ {
		if lastErr = connect(ctx); lastErr == nil {
			return nil
		}
		if attempt == defaultRetryAttempts-1 {
			break
		}

		wait := backoff(attempt)
		if logger != nil {
			logger.Warn(system+" connection failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", defaultRetryAttempts),
				slog.Duration("backoff", wait),
				slog.String("error", lastErr.Error()),
			)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("connect to %s: context canceled during retry: %w", system, ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("connect to %s after %d attempts: %w", system, defaultRetryAttempts, lastErr)
}
