package screenshot

import (
	"context"
	"io"
)

// ObjectInfo carries the content type and descriptive sidecar metadata
// attached to a stored blob. The sidecar metadata is best-effort and never
// authoritative; the Metadata record in the key-value store is.
type ObjectInfo struct {
	ContentType string
	Metadata    map[string]string
}

// ObjectStore is the blob storage backend screenshots are written to.
// Operations stream through io.Reader/io.Writer so large captures never
// need to be held in memory twice.
type ObjectStore interface {
	// Put stores a blob at key. size is the number of bytes that will be
	// read from r. Storing the same key twice overwrites.
	Put(ctx context.Context, key string, r io.Reader, size int64, info ObjectInfo) error

	// Get writes the blob at key to w. Returns an error when the key
	// does not exist.
	Get(ctx context.Context, key string, w io.Writer) error

	// Delete removes the blob at key.
	Delete(ctx context.Context, key string) error

	// ValidateSetup verifies the backend is accessible and configured.
	ValidateSetup(ctx context.Context) error
}
