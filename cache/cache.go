package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON-encoded values. Get reports false on a miss.
type Cache interface {
	Get(ctx context.Context, key string, target interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int, prefix string, ttl time.Duration) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// New returns a Redis cache when addr is set and a no-op cache otherwise.
func New(addr, password string, db int, prefix string, ttl time.Duration) Cache {
	if addr == "" {
		return Nop{}
	}
	return NewRedisCache(addr, password, db, prefix, ttl)
}

func (rc *RedisCache) key(k string) string {
	return rc.prefix + ":" + k
}

func (rc *RedisCache) Get(ctx context.Context, key string, target interface{}) (bool, error) {
	data, err := rc.client.Get(ctx, rc.key(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	return true, nil
}

func (rc *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if ttl == 0 {
		ttl = rc.ttl
	}
	if err := rc.client.Set(ctx, rc.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	return rc.client.Del(ctx, rc.key(key)).Err()
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Nop never hits.
type Nop struct{}

func (Nop) Get(context.Context, string, interface{}) (bool, error)        { return false, nil }
func (Nop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Nop) Delete(context.Context, string) error                          { return nil }

// DashboardKey is the cache key for a business's retention dashboard.
func DashboardKey(businessID string) string {
	return "dashboard:" + businessID
}
