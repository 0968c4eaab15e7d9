package util

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	storepgx "github.com/OFFIS-RIT/plotline/backend/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectDatabase migrates the schema at DATABASE_URL and opens a pool,
// retrying while the database starts up.
func ConnectDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	url := GetEnv("DATABASE_URL")
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	err := RetryErrWithContext(ctx, 5, DefaultBackoff, func(context.Context) error {
		return storepgx.Migrate(url)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	pool, err := RetryWithContext(ctx, 5, DefaultBackoff, func(ctx context.Context) (*pgxpool.Pool, error) {
		pool, err := pgxpool.New(ctx, url)
		if err != nil {
			return nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			logger.Warn("[DB] Database not reachable yet", "err", err)
			return nil, err
		}
		return pool, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}
