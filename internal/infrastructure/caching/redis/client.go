package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dialCheckTimeout = 2 * time.Second

// Client stores upstream response bodies as opaque bytes with a TTL.
type Client struct {
	rdb *redis.Client
}

// New parses a redis:// URL and fails fast when the server does not answer.
func New(url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), dialCheckTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// GetRaw reports ok=false with a nil error on a miss.
func (c *Client) GetRaw(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return val, true, nil
}

// SetRaw stores val; a non-positive ttl is refused so nothing is cached forever.
func (c *Client) SetRaw(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("redis set %q: ttl must be positive", key)
	}
	return c.rdb.Set(ctx, key, val, ttl).Err()
}
