package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/doctorconnect/pkg/config"
	"github.com/zatekoja/doctorconnect/pkg/retry"
)

// Client represents a Redis client
type Client struct {
	client *redis.Client
}

// NewClient creates a new Redis client and waits for the server to answer,
// retrying with backoff.
func NewClient(ctx context.Context, cfg *config.RedisConfig, retryCfg retry.Config) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := retry.DoWithNotify(ctx, retryCfg, "redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}, func(attempt int, err error, next time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", next).Str("addr", cfg.RedisAddr()).Msg("redis not ready")
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// NewFromRedis wraps an existing go-redis client
func NewFromRedis(client *redis.Client) *Client {
	return &Client{client: client}
}

// Client returns the underlying Redis client
func (c *Client) Client() *redis.Client {
	return c.client
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// Ping verifies the connection to Redis
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
