package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash that holds the record.
const DefaultRedisKey = "bookshelf:session"

// RedisStorage keeps the record in a single Redis hash so several terminals
// can share one login.
type RedisStorage struct {
	rdb redis.Cmdable
	key string
}

// NewRedisStorage returns a RedisStorage using key, or DefaultRedisKey if empty.
func NewRedisStorage(rdb redis.Cmdable, key string) *RedisStorage {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStorage{rdb: rdb, key: key}
}

func (r *RedisStorage) Load(ctx context.Context) (map[string]string, error) {
	values, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("session.RedisStorage.Load: %w", err)
	}
	return values, nil
}

// Save replaces the whole hash inside MULTI/EXEC.
func (r *RedisStorage) Save(ctx context.Context, rec Record) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		fields := make([]any, 0, 8)
		for k, v := range rec.Values() {
			fields = append(fields, k, v)
		}
		pipe.HSet(ctx, r.key, fields...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session.RedisStorage.Save: %w", err)
	}
	return nil
}

func (r *RedisStorage) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("session.RedisStorage.Clear: %w", err)
	}
	return nil
}
