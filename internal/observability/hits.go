package observability

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// HitCounter counts file server visits shown on the admin metrics page.
type HitCounter interface {
	Inc(ctx context.Context) error
	Value(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
}

// MemoryHitCounter is a process-local HitCounter.
type MemoryHitCounter struct {
	hits atomic.Int64
}

// NewMemoryHitCounter returns a zeroed counter.
func NewMemoryHitCounter() *MemoryHitCounter {
	return &MemoryHitCounter{}
}

func (m *MemoryHitCounter) Inc(context.Context) error {
	m.hits.Add(1)
	return nil
}

func (m *MemoryHitCounter) Value(context.Context) (int64, error) {
	return m.hits.Load(), nil
}

func (m *MemoryHitCounter) Reset(context.Context) error {
	m.hits.Store(0)
	return nil
}

// RedisHitCounter keeps the count in a Redis key so replicas share it.
type RedisHitCounter struct {
	client *redis.Client
	key    string
}

// NewRedisHitCounter stores hits under key.
func NewRedisHitCounter(client *redis.Client, key string) *RedisHitCounter {
	return &RedisHitCounter{client: client, key: key}
}

func (r *RedisHitCounter) Inc(ctx context.Context) error {
	return r.client.Incr(ctx, r.key).Err()
}

func (r *RedisHitCounter) Value(ctx context.Context) (int64, error) {
	n, err := r.client.Get(ctx, r.key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (r *RedisHitCounter) Reset(ctx context.Context) error {
	return r.client.Set(ctx, r.key, 0, 0).Err()
}
