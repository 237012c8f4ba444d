package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists each partition as one serialized blob under its
// partition path. A single SET replaces the whole blob, which gives the
// same atomic-replace guarantee as the file store's rename.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	KeyPrefix string // Prefix for all keys (default: "lingocache:")
}

// NewRedisStore creates a new Redis store with the given configuration.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisStoreFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing Redis client.
func NewRedisStoreFromClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "lingocache:"
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisStore) key(p Partition) string {
	return s.keyPrefix + p.Path()
}

// Load reads the partition blob. A missing key is an empty partition.
func (s *RedisStore) Load(ctx context.Context, p Partition) (map[string]string, []string, error) {
	data, err := s.client.Get(ctx, s.key(p)).Bytes()
	if err == redis.Nil {
		return map[string]string{}, nil, nil
	}
	if err != nil {
		return nil, nil, &CorruptError{Path: p.Path(), Cause: err}
	}

	values, order, err := decodeEntries(data)
	if err != nil {
		return nil, nil, &CorruptError{Path: p.Path(), Cause: err}
	}
	return values, order, nil
}

// Save replaces the partition blob in one SET.
func (s *RedisStore) Save(ctx context.Context, p Partition, values map[string]string, order []string) error {
	data, err := encodeEntries(values, order)
	if err != nil {
		return &WriteError{Path: p.Path(), Cause: err}
	}

	if err := s.client.Set(ctx, s.key(p), data, 0).Err(); err != nil {
		return &WriteError{Path: p.Path(), Cause: err}
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Verify RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
