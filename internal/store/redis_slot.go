package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "dsavault:slot:"

// RedisSlot stores the blob under a single key. SET replaces the value
// atomically, so readers see either the old or the new snapshot.
type RedisSlot struct {
	client *redis.Client
	name   string
}

var _ Slot = (*RedisSlot)(nil)

func NewRedisSlot(client *redis.Client, name string) *RedisSlot {
	if name == "" {
		name = DefaultSlot
	}
	return &RedisSlot{client: client, name: name}
}

func (s *RedisSlot) Name() string { return s.name }

func (s *RedisSlot) key() string {
	return redisKeyPrefix + s.name
}

func (s *RedisSlot) Read(ctx context.Context) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisSlot) Write(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, s.key(), data, 0).Err()
}
