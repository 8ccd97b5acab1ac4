package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore implements Store using Redis, for deployments where the client
// runs on a shared machine and the session must outlive the local filesystem.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	// Refresh TTL on read
	_ = s.client.Expire(ctx, s.prefix+key, s.ttl).Err()

	return val, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
}

func (s *redisStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
