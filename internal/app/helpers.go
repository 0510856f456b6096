package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ecommerce-api/internal/logx"
	"ecommerce-api/internal/repository"
)

const (
	dbAttemptTimeout = 3 * time.Second
	dbMaxBackoff     = 10 * time.Second
)

// newPool is swapped in tests.
var newPool = repository.NewPool

// backoff doubles base after every failed attempt, capped at dbMaxBackoff.
func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= dbMaxBackoff {
			return dbMaxBackoff
		}
	}
	return d
}

// connectDbWithRetry keeps dialing postgres while it starts up alongside the service.
func connectDbWithRetry(ctx context.Context, logger logx.Logger, dsn string, attempts int, base time.Duration) (*pgxpool.Pool, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		dialCtx, cancel := context.WithTimeout(ctx, dbAttemptTimeout)
		pool, err := newPool(dialCtx, dsn)
		cancel()
		if err == nil {
			logger.Info("db connected", logx.Int("attempt", attempt))
			return pool, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		wait := backoff(base, attempt)
		logger.Warn("db connect failed, retrying",
			logx.Int("attempt", attempt),
			logx.Int("attempts", attempts),
			logx.Duration("wait", wait),
			logx.Err(err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("db connect failed after %d attempts: %w", attempts, lastErr)
}
