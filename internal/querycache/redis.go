package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisScanBatch = 256

// RedisConfig holds the connection parameters of a Redis server
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DialRedis creates a Redis client and makes sure the server is reachable
func DialRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// RedisBackend implements the Backend interface using Redis.
// Every entry is stored as a JSON string with a TTL of gcTime under namespace + key.
type RedisBackend struct {
	rdb       redis.UniversalClient
	namespace string
	gcTime    time.Duration
}

var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend creates a new Redis backend.
// A gcTime <= 0 stores entries without expiration.
func NewRedisBackend(rdb redis.UniversalClient, namespace string, gcTime time.Duration) *RedisBackend {
	if gcTime < 0 {
		gcTime = 0
	}
	return &RedisBackend{
		rdb:       rdb,
		namespace: namespace,
		gcTime:    gcTime,
	}
}

// Load retrieves the entry stored under the given key
func (backend *RedisBackend) Load(ctx context.Context, key string) (*Entry, bool, error) {
	raw, err := backend.rdb.Get(ctx, backend.namespace+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	entry := new(Entry)
	if err := json.Unmarshal(raw, entry); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %q: %w", key, err)
	}
	return entry, true, nil
}

// Store stores an entry under the given key
func (backend *RedisBackend) Store(ctx context.Context, key string, entry *Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return backend.rdb.Set(ctx, backend.namespace+key, raw, backend.gcTime).Err()
}

// Delete deletes the entry stored under the given key
func (backend *RedisBackend) Delete(ctx context.Context, key string) error {
	return backend.rdb.Del(ctx, backend.namespace+key).Err()
}

// DeletePrefix deletes every entry whose key starts with the given prefix using SCAN
func (backend *RedisBackend) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	pattern := escapeGlob(backend.namespace+prefix) + "*"
	iter := backend.rdb.Scan(ctx, 0, pattern, redisScanBatch).Iterator()

	deleted := 0
	batch := make([]string, 0, redisScanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := backend.rdb.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		deleted += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == redisScanBatch {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	if err := flush(); err != nil {
		return deleted, err
	}
	return deleted, nil
}

// Close closes the underlying Redis client
func (backend *RedisBackend) Close() error {
	return backend.rdb.Close()
}

// escapeGlob escapes the characters Redis treats specially in MATCH patterns
func escapeGlob(raw string) string {
	var builder strings.Builder
	builder.Grow(len(raw))
	for _, char := range raw {
		switch char {
		case '*', '?', '[', ']', '\\', '^', '-':
			builder.WriteRune('\\')
		}
		builder.WriteRune(char)
	}
	return builder.String()
}
