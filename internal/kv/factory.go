package kv

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/config"
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/screenshot"
)

// NewKVStoreFromConfig creates a KVStore implementation based on the kv config type.
func NewKVStoreFromConfig(cfg config.KVConfig, clock screenshot.Clock) (screenshot.KVStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(clock), nil
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis kv store requires redis_url to be set")
		}
		return NewRedisStore(cfg.RedisURL)
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite kv store requires data_dir to be set")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "screenshots.db"), clock)
	default:
		return nil, fmt.Errorf("unknown kv store type: %s", cfg.Type)
	}
}
