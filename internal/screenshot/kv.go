package screenshot

import (
	"context"
	"time"
)

// KVPage is one page of a prefix listing.
type KVPage struct {
	Keys     []string
	Cursor   string
	Complete bool
}

// KVStore is the key-value store the subsystem persists metadata and index
// rows to. Implementations must treat a missing key as (nil, nil) on Get,
// not as an error.
type KVStore interface {
	// Put stores a value. A positive ttl expires the key after that
	// duration; zero or negative means no expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value. Returns (nil, nil) when the key is absent
	// or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns keys matching prefix, resuming from cursor. An empty
	// cursor starts from the beginning; Complete is true on the last page.
	List(ctx context.Context, prefix, cursor string, limit int) (*KVPage, error)

	// Close releases any underlying connections.
	Close() error
}
