package redisStore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func (s *Store) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, key).Result()
	return count > 0, err
}

// HSetWithTTL writes one hash field and refreshes the TTL of the whole hash.
func (s *Store) HSetWithTTL(ctx context.Context, key string, field string, value []byte, expiration time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, field, value)
	pipe.Expire(ctx, key, expiration)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) HGet(ctx context.Context, key string, field string) ([]byte, error) {
	return s.client.HGet(ctx, key, field).Bytes()
}
