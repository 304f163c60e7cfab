package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements domain.KeyValueStore for one device on Redis.
// Keys are namespaced as "device:<id>:<key>" and never expire.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates the store of deviceID
func NewRedisStore(client *redis.Client, deviceID string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "device:" + deviceID + ":",
	}
}

// Get implements domain.KeyValueStore
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return val, true, nil
}

// Set implements domain.KeyValueStore
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

// Remove implements domain.KeyValueStore
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

var _ domain.KeyValueStore = (*RedisStore)(nil)
