package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/notcis/apartment-app/pkg/config"
)

// OpenRedis connects the view cache. It returns (nil, nil) when no address is
// configured so callers can run without a cache.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
