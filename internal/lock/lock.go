package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker serializes the overlap-check + insert critical section of booking
// creation. One lock per vendor; two concurrent requests for the same vendor
// cannot both pass the availability check.
type Locker interface {
	Acquire(ctx context.Context, key, owner string) (bool, error)
	Release(ctx context.Context, key, owner string) error
}

const keyPrefix = "booking_lock:"

// DefaultTTL bounds how long a crashed holder can block a vendor.
const DefaultTTL = 30 * time.Second

type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// Acquire takes the vendor lock if free. The owner token is stored as the
// value so only the holder can release it.
func (l *RedisLocker) Acquire(ctx context.Context, key, owner string) (bool, error) {
	ok, err := l.client.SetNX(ctx, keyPrefix+key, owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %v", key, err)
	}
	return ok, nil
}

// Release deletes the lock only when still held by owner. Releasing a lock
// that expired or belongs to someone else is a no-op.
func (l *RedisLocker) Release(ctx context.Context, key, owner string) error {
	val, err := l.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to inspect lock %s: %v", key, err)
	}
	if val != owner {
		return nil
	}
	if err := l.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %v", key, err)
	}
	return nil
}
