package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares tokens between BFF instances. Expiry is Redis' own TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "storefront:tok"}
}

func (r *RedisStore) key(sessionID, name string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, sessionID, name)
}

func (r *RedisStore) Get(ctx context.Context, sessionID, name string) (string, error) {
	value, err := r.client.Get(ctx, r.key(sessionID, name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return value, nil
}

func (r *RedisStore) Set(ctx context.Context, sessionID, name, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(sessionID, name), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = r.key(sessionID, name)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
