package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// TokenRepository stores booking-link tokens and what they resolve to.
type TokenRepository interface {
	Save(ctx context.Context, token string, info domain.TokenInfo, ttl time.Duration) error
	Get(ctx context.Context, token string) (domain.TokenInfo, error)
}

type tokenRepository struct {
	rdb *redis.Client
}

func NewTokenRepository(rdb *redis.Client) TokenRepository {
	return &tokenRepository{rdb: rdb}
}

func bookingTokenKey(token string) string { return "booking_token:" + token }

// Save stores info under token. A zero ttl keeps it forever.
func (r *tokenRepository) Save(ctx context.Context, token string, info domain.TokenInfo, ttl time.Duration) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, bookingTokenKey(token), payload, ttl).Err()
}

func (r *tokenRepository) Get(ctx context.Context, token string) (domain.TokenInfo, error) {
	raw, err := r.rdb.Get(ctx, bookingTokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.TokenInfo{}, ErrNotFound
	}
	if err != nil {
		return domain.TokenInfo{}, err
	}
	var info domain.TokenInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return domain.TokenInfo{}, err
	}
	return info, nil
}
