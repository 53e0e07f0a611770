package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pageza/recipify/backend/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient creates a new Redis client. It returns (nil, nil) when Redis
// is not configured; callers treat a nil client as "no cache, no rate limit".
func NewRedisClient(cfg *config.Config, log *logrus.Logger) (*redis.Client, error) {
	if !cfg.RedisEnabled() {
		log.Warn("Redis not configured; related-recipe cache and rate limiting disabled")
		return nil, nil
	}

	opts := &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Use Redis URL if provided (for production deployments)
	if cfg.RedisURL != "" {
		parsedOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opts = parsedOpts
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.WithField("addr", opts.Addr).Info("Successfully connected to Redis")
	return client, nil
}
