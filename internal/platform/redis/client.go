// Package redis connects the shared revocation list backend.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"redhope/internal/platform/config"
)

const (
	healthTimeout = 2 * time.Second
	retryBackoff  = 500 * time.Millisecond
)

// Client embeds the go-redis client so stores use it directly.
type Client struct {
	*redis.Client
}

// New returns nil, nil when no URL is configured. Otherwise it pings up to
// cfg.ConnectAttempts times, doubling the wait between attempts, so a
// container that starts alongside the service has time to accept
// connections.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	applyPoolSettings(opts, cfg)

	client := redis.NewClient(opts)
	attempts := max(cfg.ConnectAttempts, 1)
	wait := retryBackoff
	for attempt := 1; ; attempt++ {
		err = client.Ping(ctx).Err()
		if err == nil {
			return &Client{Client: client}, nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(wait):
			wait *= 2
		}
	}
	_ = client.Close()
	return nil, fmt.Errorf("redis ping failed after %d attempts: %w", attempts, err)
}

func applyPoolSettings(opts *redis.Options, cfg config.RedisConfig) {
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
}

// Health pings with its own short deadline so a stalled server cannot hold
// up the /health endpoint.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return c.Ping(ctx).Err()
}
