// Package cache is a thin JSON cache on redis for hot read paths:
// published entity details and per-user unread notification counters.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// TTLDetail covers published entity detail responses.
	TTLDetail = 2 * time.Minute
	// TTLUnread covers unread notification counters.
	TTLUnread = 1 * time.Minute
)

const (
	prefixDetail = "entity:"
	prefixUnread = "unread:"
)

// DetailKey is the cache key for one entity's published detail.
func DetailKey(entityUUID string) string {
	return prefixDetail + entityUUID
}

// UnreadKey is the cache key for one recipient's unread counter.
func UnreadKey(recipientID uint64) string {
	return fmt.Sprintf("%s%d", prefixUnread, recipientID)
}

// Service is the cache contract. Implementations tolerate a missing
// backend: writes become no-ops, reads miss.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a redis-backed cache service.
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return fmt.Errorf("redis not available")
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
