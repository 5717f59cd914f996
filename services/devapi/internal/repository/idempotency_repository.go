package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyRepository caches responses by hashed Idempotency-Key. It
// satisfies the idempotency middleware's store.
type IdempotencyRepository struct {
	rdb *redis.Client
}

func NewIdempotencyRepository(rdb *redis.Client) *IdempotencyRepository {
	return &IdempotencyRepository{rdb: rdb}
}

// Get returns "" with no error when the key is unknown.
func (r *IdempotencyRepository) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	val, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (r *IdempotencyRepository) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.rdb.Set(ctx, key, value, ttl).Err()
}
