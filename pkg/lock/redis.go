package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLocker implements Locker with a Redis SetNX lease. The TTL bounds how
// long a crashed holder can block other requests.
type RedisLocker struct {
	client *redis.Client
	prefix string
}

func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.fullKey(key), "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (l *RedisLocker) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.fullKey(key)).Err()
}

func (l *RedisLocker) fullKey(key string) string {
	return fmt.Sprintf("%s:lock:%s", l.prefix, key)
}
