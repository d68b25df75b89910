package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewRedisClient connects to REDIS_URL, accepting either a redis:// URL or a
// bare host:port. It returns a nil client when REDIS_URL is unset; callers
// treat that as "no session denylist".
func NewRedisClient(lc fx.Lifecycle, cfg *Config, logger *zap.Logger) (*redis.Client, error) {
	logger = logger.Named("redis")
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, session revocation disabled")
		return nil, nil
	}

	var client *redis.Client
	if strings.HasPrefix(cfg.RedisURL, "redis://") || strings.HasPrefix(cfg.RedisURL, "rediss://") {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("connected to redis")

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			logger.Info("closing redis connection")
			return client.Close()
		},
	})
	return client, nil
}
