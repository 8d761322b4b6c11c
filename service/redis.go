package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"print-shop-mis/config"
)

// NewRedis creates a Redis client and checks the connection.
// The returned cleanup closes the client.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, func(), error) {
	if !cfg.Enabled() {
		return nil, nil, fmt.Errorf("redis address is required")
	}

	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:           cfg.Addrs,
		Password:        cfg.Password,
		DB:              cfg.DB,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolSize:        20,
		MinIdleConns:    2,
		PoolTimeout:     5 * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed pinging redis: %w", err)
	}

	cleanup := func() {
		zap.S().Info("closing redis connection")
		if err := rdb.Close(); err != nil {
			zap.S().Errorf("❌ Redis: close failed: %v", err)
		}
	}

	zap.S().Infof("✅ Redis connection established: %v", cfg.Addrs)
	return rdb, cleanup, nil
}
