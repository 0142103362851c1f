package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"idgate/internal/config"
	"idgate/internal/db"
	"idgate/internal/redis"
)

type infra struct {
	db    *db.DB
	redis *redis.Client
}

func (i *infra) close() error {
	var firstErr error
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			firstErr = err
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// setupInfra opens postgres and redis, runs migrations and hands back
// both handles. On any failure whatever was opened is closed again.
func setupInfra(ctx context.Context, cfg config.Config) (*infra, error) {
	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := db.RunMigration(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &infra{
		db:    &db.DB{DB: sqlDB},
		redis: redisClient,
	}, nil
}
