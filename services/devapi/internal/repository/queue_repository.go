package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("not found")

// QueueRepository stores each barber's walk-in queue as a redis list of
// session ids, head first.
type QueueRepository interface {
	Join(ctx context.Context, barberID, sessionID string) (position, length int, err error)
	Position(ctx context.Context, barberID, sessionID string) (position, length int, err error)
	Leave(ctx context.Context, barberID, sessionID string) (bool, error)
	PopHead(ctx context.Context, barberID string, servedTTL time.Duration) (string, error)
	Length(ctx context.Context, barberID string) (int, error)
	IsOpen(ctx context.Context, barberID string) (bool, error)
	SetOpen(ctx context.Context, barberID string, open bool) error
	Barbers(ctx context.Context) ([]string, error)
}

type queueRepository struct {
	rdb *redis.Client
}

func NewQueueRepository(rdb *redis.Client) QueueRepository {
	return &queueRepository{rdb: rdb}
}

const queueIndexKey = "queue:barbers"

func queueKey(barberID string) string { return "queue:" + barberID }

func closedKey(barberID string) string { return "queue:" + barberID + ":closed" }

func servedKey(barberID, sessionID string) string {
	return fmt.Sprintf("queue:%s:served:%s", barberID, sessionID)
}

// joinRetries bounds the optimistic retries of Join under contention.
const joinRetries = 25

// Join appends the session unless it is already queued. Positions are
// 1-based. The check and the push run in one WATCH transaction, so
// concurrent joins of the same session add a single entry.
func (r *queueRepository) Join(ctx context.Context, barberID, sessionID string) (int, int, error) {
	key := queueKey(barberID)
	var position, length int
	join := func(tx *redis.Tx) error {
		idx, err := tx.LPos(ctx, key, sessionID, redis.LPosArgs{}).Result()
		if err == nil {
			n, err := tx.LLen(ctx, key).Result()
			position, length = int(idx)+1, int(n)
			return err
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}

		var push *redis.IntCmd
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, servedKey(barberID, sessionID))
			pipe.SAdd(ctx, queueIndexKey, barberID)
			push = pipe.RPush(ctx, key, sessionID)
			return nil
		})
		if err != nil {
			return err
		}
		position = int(push.Val())
		length = position
		return nil
	}

	for i := 0; i < joinRetries; i++ {
		err := r.rdb.Watch(ctx, join, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return 0, 0, err
		}
		return position, length, nil
	}
	return 0, 0, fmt.Errorf("join queue %s: gave up after %d conflicting attempts", barberID, joinRetries)
}

// Position reports 0 for a session served within the served TTL and
// ErrNotFound for one that is neither queued nor recently served.
func (r *queueRepository) Position(ctx context.Context, barberID, sessionID string) (int, int, error) {
	key := queueKey(barberID)
	length, err := r.rdb.LLen(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	idx, err := r.rdb.LPos(ctx, key, sessionID, redis.LPosArgs{}).Result()
	if err == nil {
		return int(idx) + 1, int(length), nil
	}
	if !errors.Is(err, redis.Nil) {
		return 0, 0, err
	}

	served, err := r.rdb.Exists(ctx, servedKey(barberID, sessionID)).Result()
	if err != nil {
		return 0, 0, err
	}
	if served == 0 {
		return 0, int(length), ErrNotFound
	}
	return 0, int(length), nil
}

// Leave removes the session from the queue and forgets any served marker.
func (r *queueRepository) Leave(ctx context.Context, barberID, sessionID string) (bool, error) {
	pipe := r.rdb.TxPipeline()
	removed := pipe.LRem(ctx, queueKey(barberID), 0, sessionID)
	pipe.Del(ctx, servedKey(barberID, sessionID))
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return removed.Val() > 0, nil
}

// PopHead removes the first session and remembers it as served.
func (r *queueRepository) PopHead(ctx context.Context, barberID string, servedTTL time.Duration) (string, error) {
	sessionID, err := r.rdb.LPop(ctx, queueKey(barberID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if err := r.rdb.Set(ctx, servedKey(barberID, sessionID), "1", servedTTL).Err(); err != nil {
		return sessionID, err
	}
	return sessionID, nil
}

func (r *queueRepository) Length(ctx context.Context, barberID string) (int, error) {
	n, err := r.rdb.LLen(ctx, queueKey(barberID)).Result()
	return int(n), err
}

// IsOpen is true unless the queue was explicitly closed.
func (r *queueRepository) IsOpen(ctx context.Context, barberID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, closedKey(barberID)).Result()
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (r *queueRepository) SetOpen(ctx context.Context, barberID string, open bool) error {
	if open {
		return r.rdb.Del(ctx, closedKey(barberID)).Err()
	}
	return r.rdb.Set(ctx, closedKey(barberID), "1", 0).Err()
}

// Barbers lists every barber that ever had someone in queue.
func (r *queueRepository) Barbers(ctx context.Context) ([]string, error) {
	return r.rdb.SMembers(ctx, queueIndexKey).Result()
}
