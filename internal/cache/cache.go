package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps redis.Client and degrades to a no-op when redis is down: a
// failed read behaves like a miss and failed writes are dropped. The blog
// must keep serving without its cache.
//
// Two access patterns are exposed: JSON documents (the recent-posts list) and
// bare flags (the token deny list).
type Client struct {
	client *redis.Client
}

// New creates a redis-backed cache client.
func New(addr, password string, db int) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return &Client{client: redis.NewClient(opts)}
}

// GetJSON loads the value at key into dest and reports whether a usable copy
// existed. Misses, redis failures and undecodable payloads all read as "not
// cached".
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	data := c.get(ctx, key)
	if data == nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// SetJSON stores value as JSON with a TTL, dropping the write on redis
// failure.
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	c.set(ctx, key, data, ttl)
	return nil
}

// SetFlag marks key for the given TTL.
func (c *Client) SetFlag(ctx context.Context, key string, ttl time.Duration) error {
	c.set(ctx, key, []byte("1"), ttl)
	return nil
}

// HasFlag reports whether key is marked. An unreachable redis reads as
// unmarked.
func (c *Client) HasFlag(ctx context.Context, key string) bool {
	return c.get(ctx, key) != nil
}

// Delete removes a key, ignoring redis failures.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return nil
	}
	return nil
}

func (c *Client) get(ctx context.Context, key string) []byte {
	if c == nil || c.client == nil {
		return nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and an unreachable redis both read as a miss
		return nil
	}
	return res
}

func (c *Client) set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, key, value, ttl).Err()
}
