package session

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// StoreType represents the type of session store.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeFile   StoreType = "file"
	StoreTypeRedis  StoreType = "redis"
)

// StoreOption is a functional option for configuring a session store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	path        string
	redisClient *redis.Client
	redisTTL    time.Duration
	redisPrefix string
}

// WithPath sets the backing file path for the file store.
func WithPath(path string) StoreOption {
	return func(c *storeConfig) {
		c.path = path
	}
}

// WithRedisClient sets the Redis client for the Redis store.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithRedisTTL sets the TTL for Redis keys.
func WithRedisTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.redisTTL = ttl
	}
}

// WithRedisPrefix sets the key prefix for the Redis store.
func WithRedisPrefix(prefix string) StoreOption {
	return func(c *storeConfig) {
		c.redisPrefix = prefix
	}
}

// NewStore creates a new session Store of the given type.
// The file driver requires WithPath; the redis driver requires WithRedisClient.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	config := &storeConfig{}

	for _, opt := range opts {
		opt(config)
	}

	switch storeType {
	case StoreTypeMemory:
		return &memoryStore{
			values: make(map[string]string),
		}, nil

	case StoreTypeFile:
		if config.path == "" {
			return nil, ErrInvalidConfig
		}
		return &fileStore{path: config.path}, nil

	case StoreTypeRedis:
		if config.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		ttl := config.redisTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		prefix := config.redisPrefix
		if prefix == "" {
			prefix = "ragchat:session:"
		}
		return &redisStore{
			client: config.redisClient,
			ttl:    ttl,
			prefix: prefix,
		}, nil

	default:
		return nil, ErrInvalidStoreType
	}
}
