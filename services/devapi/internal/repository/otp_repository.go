package repository

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPRepository keeps one pending login code hash per phone.
type OTPRepository interface {
	Save(ctx context.Context, phone, codeHash string, ttl time.Duration) error
	Get(ctx context.Context, phone string) (string, error)
	Delete(ctx context.Context, phone string) error
}

type otpRepository struct {
	rdb *redis.Client
}

func NewOTPRepository(rdb *redis.Client) OTPRepository {
	return &otpRepository{rdb: rdb}
}

// otpKey hashes the phone so numbers do not appear in key listings.
func otpKey(phone string) string {
	hasher := sha256.New()
	hasher.Write([]byte(phone))
	return fmt.Sprintf("otp:%x", hasher.Sum(nil))
}

func (r *otpRepository) Save(ctx context.Context, phone, codeHash string, ttl time.Duration) error {
	return r.rdb.Set(ctx, otpKey(phone), codeHash, ttl).Err()
}

func (r *otpRepository) Get(ctx context.Context, phone string) (string, error) {
	hash, err := r.rdb.Get(ctx, otpKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return hash, err
}

func (r *otpRepository) Delete(ctx context.Context, phone string) error {
	return r.rdb.Del(ctx, otpKey(phone)).Err()
}
