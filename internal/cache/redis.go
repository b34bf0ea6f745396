package cache

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pricofy/translate-gateway/internal/chunker"
)

// RedisStore is a Store backed by Redis.
type RedisStore struct {
	client   redis.UniversalClient
	maxItems int
	maxBytes int
}

// NewRedisStore connects to the Redis instance at url (redis://[:password@]host:port/db).
// Dial, read and write timeouts are bounded by timeout so an unreachable server
// degrades quickly instead of stalling requests.
func NewRedisStore(url string, timeout time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if timeout > 0 {
		opts.DialTimeout = timeout
		opts.ReadTimeout = timeout
		opts.WriteTimeout = timeout
	}
	opts.MaxRetries = 1

	return NewRedisStoreFromClient(redis.NewClient(opts)), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client:   client,
		maxItems: chunker.DefaultMaxItems,
		maxBytes: chunker.DefaultMaxBytes,
	}
}

// GetMany issues one MGET per chunk of keys.
func (s *RedisStore) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	found := make(map[string]string, len(keys))

	for _, batch := range chunker.ChunkBySize(keys, s.maxItems, s.maxBytes) {
		values, err := s.client.MGet(ctx, batch...).Result()
		if err != nil {
			return nil, fmt.Errorf("mget: %w", err)
		}
		for i, v := range values {
			// Missing keys come back as nil.
			if str, ok := v.(string); ok {
				found[batch[i]] = str
			}
		}
	}

	return found, nil
}

// SetMany writes entries with pipelined SET commands, one pipeline per chunk.
func (s *RedisStore) SetMany(ctx context.Context, entries map[string]string, ttl time.Duration) error {
	if len(entries) == 0 {
		return nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, batch := range chunker.ChunkBySize(keys, s.maxItems, s.maxBytes) {
		_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, k := range batch {
				pipe.Set(ctx, k, entries[k], ttl)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("pipelined set: %w", err)
		}
	}

	return nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
