package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{
		client: client,
		ttl:    90 * 24 * time.Hour,
	}
}

// RedisStorage keeps each cart as a JSON-encoded line array under
// cart:<key>. Carts never expire from the customer's point of view; the TTL
// only reaps sessions long abandoned.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisStorage) Load(ctx context.Context, key string) ([]Line, error) {
	data, err := r.client.Get(ctx, storageKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		// Malformed persisted data is an empty cart, not an error.
		return nil, ErrNotFound
	}
	return lines, nil
}

func (r *RedisStorage) Save(ctx context.Context, key string, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := r.client.Set(ctx, storageKey(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, storageKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func storageKey(key string) string {
	return fmt.Sprintf("cart:%s", key)
}
