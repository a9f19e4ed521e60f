package objectstore

import (
	"context"
	"fmt"

	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/config"
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/screenshot"
)

// NewObjectStoreFromConfig creates an ObjectStore implementation based on
// the object store config type.
func NewObjectStoreFromConfig(ctx context.Context, cfg config.ObjectStoreConfig) (screenshot.ObjectStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem object store requires fs_root to be set")
		}
		return NewFileSystemStore(cfg.FSRoot)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown object store type: %s", cfg.Type)
	}
}
