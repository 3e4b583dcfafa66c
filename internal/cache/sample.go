// Package cache keeps the reference data used to build orders in Redis so
// repeated simulations skip the sample-data queries.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jacobarthurs/schemabench/internal/orders"
)

const (
	DefaultKey = "schemabench:sample-data"
	DefaultTTL = time.Minute
)

// Loader matches simulation.SampleLoader.
type Loader = func(ctx context.Context) (orders.SampleData, error)

type SampleCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*SampleCache)

func WithKey(key string) Option {
	return func(c *SampleCache) {
		if key != "" {
			c.key = key
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *SampleCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// Open connects to the Redis server at url and verifies it answers.
func Open(ctx context.Context, url string, ttl time.Duration, opts ...Option) (*SampleCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return New(client, ttl, opts...), nil
}

func New(client *redis.Client, ttl time.Duration, opts ...Option) *SampleCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &SampleCache{
		client: client,
		key:    DefaultKey,
		ttl:    ttl,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wrap returns a loader that answers from Redis when it can and falls back to
// load otherwise. Redis failures are logged and never fail the caller.
func (c *SampleCache) Wrap(load Loader) Loader {
	return func(ctx context.Context) (orders.SampleData, error) {
		if data, ok := c.get(ctx); ok {
			return data, nil
		}

		data, err := load(ctx)
		if err != nil {
			return orders.SampleData{}, err
		}
		c.set(ctx, data)
		return data, nil
	}
}

func (c *SampleCache) get(ctx context.Context) (orders.SampleData, bool) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("sample cache read failed", "key", c.key, "err", err)
		}
		return orders.SampleData{}, false
	}

	var data orders.SampleData
	if err := json.Unmarshal(raw, &data); err != nil {
		c.logger.Warn("sample cache entry unreadable", "key", c.key, "err", err)
		return orders.SampleData{}, false
	}
	return data, true
}

func (c *SampleCache) set(ctx context.Context, data orders.SampleData) {
	raw, err := json.Marshal(data)
	if err != nil {
		c.logger.Warn("encoding sample data", "err", err)
		return
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("sample cache write failed", "key", c.key, "err", err)
	}
}

// Invalidate drops the cached entry, for example after reseeding.
func (c *SampleCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("invalidating sample cache: %w", err)
	}
	return nil
}

func (c *SampleCache) Close() error {
	return c.client.Close()
}
