package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL constants
const (
	TTLCount   = 30 * time.Second // engagement counts (frequently flipped)
	TTLDefault = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixCount = "engage:count:"
)

// ErrMiss is returned when a key is absent
var ErrMiss = errors.New("cache miss")

// Service is the Redis cache surface used by the services
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Engagement counts
	GetCount(ctx context.Context, targetID, targetType, engagementType string) (int64, error)
	SetCount(ctx context.Context, targetID, targetType, engagementType string, count int64) error
	InvalidateCount(ctx context.Context, targetID, targetType, engagementType string) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// New creates a Redis-backed cache service. A nil client yields an
// unavailable cache; callers fall through to the database.
func New(client *redis.Client) Service {
	return &redisCache{client: client}
}

func countKey(targetID, targetType, engagementType string) string {
	return fmt.Sprintf("%s%s:%s:%s", PrefixCount, targetType, targetID, engagementType)
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.IsAvailable() {
		return ErrMiss
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.IsAvailable() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = TTLDefault
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if !c.IsAvailable() || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) GetCount(ctx context.Context, targetID, targetType, engagementType string) (int64, error) {
	var count int64
	if err := c.Get(ctx, countKey(targetID, targetType, engagementType), &count); err != nil {
		return 0, err
	}
	return count, nil
}

func (c *redisCache) SetCount(ctx context.Context, targetID, targetType, engagementType string, count int64) error {
	return c.Set(ctx, countKey(targetID, targetType, engagementType), count, TTLCount)
}

func (c *redisCache) InvalidateCount(ctx context.Context, targetID, targetType, engagementType string) error {
	return c.Delete(ctx, countKey(targetID, targetType, engagementType))
}

func (c *redisCache) IsAvailable() bool {
	return c != nil && c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if !c.IsAvailable() {
		return errors.New("redis client not configured")
	}
	return c.client.Ping(ctx).Err()
}
