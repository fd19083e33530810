package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// GetJSON reads a cached JSON document into out. The second return is false
// on a cache miss.
func GetJSON(ctx context.Context, c *Client, key string, out any) (bool, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value as JSON under key with the given TTL.
func SetJSON(ctx context.Context, c *Client, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, ttl).Err()
}

// Invalidate deletes the given keys.
func Invalidate(ctx context.Context, c *Client, keys ...string) error {
	return c.Del(ctx, keys...).Err()
}
