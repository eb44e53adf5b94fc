package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 512

type RedisCacheStore struct {
	client *redis.Client
}

func NewRedisCacheStore(client *redis.Client) *RedisCacheStore {
	return &RedisCacheStore{
		client: client,
	}
}

func (r *RedisCacheStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	switch {
	case err == redis.Nil:
		return "", false, nil
	case err != nil:
		return "", false, err
	default:
		return val, true, nil
	}
}

func (r *RedisCacheStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, safeTTL(ttl)).Err()
}

func (r *RedisCacheStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Del(ctx, key).Result()
	return n > 0, err
}

// DeleteMatching removes keys by glob pattern via SCAN, not KEYS: the store
// is shared with live request traffic and must not be blocked on large
// keyspaces.
func (r *RedisCacheStore) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			removed += int(n)
			if err != nil {
				return removed, err
			}
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

func safeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		// минимальный TTL, чтобы ключ всё-таки исчез
		return time.Second
	}
	return ttl
}
