package kv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/screenshot"
)

// RedisStore implements the KVStore interface on Redis. Values are stored
// with SET and a native TTL; prefix listing uses SCAN with Redis's own
// cursor, so List pages may be smaller or slightly larger than limit and
// carry no ordering guarantee.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis at the given URL and verifies the
// connection with a short ping.
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Put stores a value, with an optional TTL.
func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value, or (nil, nil) when absent.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Delete removes a key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// List scans keys matching prefix. The cursor is Redis's SCAN cursor.
func (s *RedisStore) List(ctx context.Context, prefix, cursor string, limit int) (*screenshot.KVPage, error) {
	if limit <= 0 {
		limit = 100
	}
	var scanCursor uint64
	if cursor != "" {
		c, err := strconv.ParseUint(cursor, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor %q: %w", cursor, err)
		}
		scanCursor = c
	}

	keys, next, err := s.client.Scan(ctx, scanCursor, prefix+"*", int64(limit)).Result()
	if err != nil {
		return nil, err
	}

	page := &screenshot.KVPage{Keys: keys, Complete: next == 0}
	if next != 0 {
		page.Cursor = strconv.FormatUint(next, 10)
	}
	return page, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Compile-time check that RedisStore implements the KVStore interface.
var _ screenshot.KVStore = (*RedisStore)(nil)
