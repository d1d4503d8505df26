// Package cache wraps go-redis with the small surface the inventory
// service needs: namespaced keys, JSON values and a health probe.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cheftrack/cheftrack-backend/pkg/config"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const keyNamespace = "cheftrack"

// Store is the subset of the go-redis API the client uses
type Store interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client is a namespaced Redis client
type Client struct {
	store  Store
	raw    *redis.Client
	logger *logger.Logger
}

// New connects to Redis and verifies the connection with a PING
func New(ctx context.Context, cfg *config.RedisConfig, log *logger.Logger) (*Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	raw := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	if err := raw.Ping(ctx).Err(); err != nil {
		raw.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Str("addr", cfg.Addr).Msg("connected to Redis")

	return &Client{store: raw, raw: raw, logger: log}, nil
}

// NewWithStore wraps an existing store, e.g. a fake in tests
func NewWithStore(store Store, log *logger.Logger) *Client {
	return &Client{store: store, logger: log}
}

// GetJSON loads key into dest. found is false on a cache miss.
func (c *Client) GetJSON(ctx context.Context, key string, dest any) (found bool, err error) {
	if c == nil || c.store == nil {
		return false, nil
	}

	raw, err := c.store.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores value under key for ttl
func (c *Client) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil || c.store == nil {
		return nil
	}

	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return c.store.Set(ctx, key, body, ttl).Err()
}

// Del removes the provided keys
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if c == nil || c.store == nil || len(keys) == 0 {
		return nil
	}
	return c.store.Del(ctx, keys...).Err()
}

// Key builds a namespaced key, skipping empty parts
func (c *Client) Key(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			clean = append(clean, part)
		}
	}
	return strings.Join(clean, ":")
}

// Health returns the health status of Redis
func (c *Client) Health(ctx context.Context) map[string]string {
	status := map[string]string{
		"status": "up",
	}

	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if err := c.store.Ping(ctx).Err(); err != nil {
		status["status"] = "down"
		status["error"] = err.Error()
	}

	return status
}

// Close shuts down the underlying client if available
func (c *Client) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
