package credential

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares the token between processes through redis.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore stores the token at "<prefix>:auth_token".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	key := TokenKey
	if prefix != "" {
		key = prefix + ":" + TokenKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Get(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return token, nil
}

func (s *RedisStore) Set(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", s.key, err)
	}
	return nil
}
