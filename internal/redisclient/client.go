package redisclient

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const gamesCountKey = "games:count"

//go:embed scripts/release_lock.lua
var releaseLockScript string

type Client struct {
	rdb         *redis.Client
	releaseLock *redis.Script
}

// NewClient creates a new Redis client and checks the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, releaseLock: redis.NewScript(releaseLockScript)}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// GetGamesCount returns the cached games count. ok is false on a miss.
func (c *Client) GetGamesCount(ctx context.Context) (count int, ok bool, err error) {
	count, err = c.rdb.Get(ctx, gamesCountKey).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// SetGamesCount caches the games count for ttl
func (c *Client) SetGamesCount(ctx context.Context, count int, ttl time.Duration) error {
	return c.rdb.Set(ctx, gamesCountKey, count, ttl).Err()
}

// InvalidateGamesCount drops the cached games count
func (c *Client) InvalidateGamesCount(ctx context.Context) error {
	return c.rdb.Del(ctx, gamesCountKey).Err()
}

// SetIdempotencyKey stores value as JSON under the idempotency key with TTL
func (c *Client) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal idempotent response: %w", err)
	}
	return c.rdb.Set(ctx, IdempotencyKey(key), data, ttl).Err()
}

// GetIdempotencyKey decodes a stored response into dest. It reports false
// when the key has not been used.
func (c *Client) GetIdempotencyKey(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.rdb.Get(ctx, IdempotencyKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal idempotent response: %w", err)
	}
	return true, nil
}

// AcquireLock takes the lock guarding an idempotency key. It reports false
// when another holder has it. The returned token releases the lock.
func (c *Client) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.rdb.SetNX(ctx, LockKey(key), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return token, ok, nil
}

// ReleaseLock drops the lock if token still owns it.
func (c *Client) ReleaseLock(ctx context.Context, key, token string) error {
	return c.releaseLock.Run(ctx, c.rdb, []string{LockKey(key)}, token).Err()
}

// LockKey is the lock guarding an idempotency key
func LockKey(key string) string {
	return "lock:" + IdempotencyKey(key)
}

// IdempotencyKey namespaces a client supplied key
func IdempotencyKey(key string) string {
	return fmt.Sprintf("idempotency:%s", key)
}
