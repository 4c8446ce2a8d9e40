package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BruksfildServices01/consultorio-api/internal/logging"
)

// WithRetry runs fn up to attempts times, doubling the wait after each
// failure. It is the only automatic retry in the service and only wraps
// connection acquisition.
func WithRetry(
	ctx context.Context,
	attempts int,
	baseDelay time.Duration,
	logger *logging.Logger,
	fn func() error,
) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := baseDelay
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts {
			break
		}

		logger.Warn("database not ready, retrying",
			"attempt", i,
			"max_attempts", attempts,
			"delay", delay.String(),
			"error", err,
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}

func PingWithRetry(
	ctx context.Context,
	sqlDB *sql.DB,
	attempts int,
	baseDelay time.Duration,
	logger *logging.Logger,
) error {
	return WithRetry(ctx, attempts, baseDelay, logger, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return sqlDB.PingContext(pingCtx)
	})
}
