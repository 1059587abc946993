package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SweepLock is a best-effort leader lock backed by Redis SETNX, used so
// only one instance runs the expired-session sweep at a time. Losing the
// lock race is not an error: the sweep is idempotent and another instance
// is already doing the work.
type SweepLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewSweepLock creates a SweepLock. The TTL bounds how long a crashed
// holder can block other instances; it should exceed the longest expected
// sweep pass.
func NewSweepLock(client *redis.Client, key string, ttl time.Duration) *SweepLock {
	return &SweepLock{client: client, key: key, ttl: ttl}
}

// Acquire attempts to take the lock. It returns false when another holder
// already has it.
func (l *SweepLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("sweep lock acquire: %w", err)
	}
	return ok, nil
}

// Release drops the lock so the next tick on any instance can take it.
func (l *SweepLock) Release(ctx context.Context) error {
	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("sweep lock release: %w", err)
	}
	return nil
}
