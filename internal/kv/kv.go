package kv

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

const (
	memorySize   = 10000
	memoryMaxTTL = 7 * 24 * time.Hour
)

// Client is a small key/value facade used for session tokens. It is backed
// by Redis, or by a bounded in-process cache when no Redis is configured.
// A nil Client behaves as an always-empty store that accepts writes.
type Client struct {
	client redis.UniversalClient
	memory *expirable.LRU[string, entry]
	now    func() time.Time
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// New creates a new Redis client.
func New(addr, password string, db int) *Client {
	return &Client{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Wrap uses an existing Redis client.
func Wrap(client redis.UniversalClient) *Client {
	return &Client{client: client}
}

// NewMemory creates a process-local store. Entries live at most a week
// regardless of the TTL they were written with.
func NewMemory() *Client {
	return &Client{
		memory: expirable.NewLRU[string, entry](memorySize, nil, memoryMaxTTL),
		now:    time.Now,
	}
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Get returns the value, or nil when the key is missing.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	switch {
	case c == nil:
		return nil, nil
	case c.memory != nil:
		e, ok := c.memory.Get(key)
		if !ok {
			return nil, nil
		}
		if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
			c.memory.Remove(key)
			return nil, nil
		}
		return e.value, nil
	case c.client == nil:
		return nil, nil
	}

	res, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Set stores value with TTL. A zero TTL means no expiry.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	switch {
	case c == nil:
		return nil
	case c.memory != nil:
		e := entry{value: value}
		if ttl > 0 {
			e.expiresAt = c.now().Add(ttl)
		}
		c.memory.Add(key, e)
		return nil
	case c.client == nil:
		return nil
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a key. Missing keys are not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	switch {
	case c == nil:
		return nil
	case c.memory != nil:
		c.memory.Remove(key)
		return nil
	case c.client == nil:
		return nil
	}
	return c.client.Del(ctx, key).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	switch {
	case c == nil:
		return nil
	case c.memory != nil:
		c.memory.Purge()
		return nil
	case c.client == nil:
		return nil
	}
	return c.client.Close()
}
