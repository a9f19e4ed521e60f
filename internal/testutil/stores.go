package testutil

import (
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/kv"
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/objectstore"
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/screenshot"
)

// NewTestKV creates a new in-memory key-value store for testing, reading
// time from the given clock.
func NewTestKV(clock screenshot.Clock) screenshot.KVStore {
	return kv.NewMemoryStore(clock)
}

// NewTestObjectStore creates a new in-memory object store for testing.
// The concrete type is returned so tests can inspect stored blobs.
func NewTestObjectStore() *objectstore.MemoryStore {
	return objectstore.NewMemoryStore()
}
