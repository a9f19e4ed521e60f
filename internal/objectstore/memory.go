package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/screenshot"
)

// MemoryStore is an in-memory implementation of the ObjectStore interface.
// It stores all blobs and object info in memory, making it useful for
// testing. This implementation is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	infos   map[string]screenshot.ObjectInfo
}

// NewMemoryStore creates a new in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
		infos:   make(map[string]screenshot.ObjectInfo),
	}
}

// Put stores a blob at key. Storing the same key twice overwrites.
func (m *MemoryStore) Put(_ context.Context, key string, r io.Reader, size int64, info screenshot.ObjectInfo) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	m.objects[key] = data
	m.infos[key] = info
	m.mu.Unlock()
	return nil
}

// Get writes the blob at key to w.
func (m *MemoryStore) Get(_ context.Context, key string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return fmt.Errorf("object not found: %s", key)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}

// Delete removes the blob at key. Deleting an absent key is a no-op.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	delete(m.infos, key)
	m.mu.Unlock()
	return nil
}

// ValidateSetup always succeeds for the in-memory store.
func (m *MemoryStore) ValidateSetup(context.Context) error { return nil }

// Info returns the stored object info for a key. Test helper.
func (m *MemoryStore) Info(key string) (screenshot.ObjectInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.infos[key]
	return info, ok
}

// Len returns the number of stored blobs. Test helper.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Compile-time check that MemoryStore implements the ObjectStore interface.
var _ screenshot.ObjectStore = (*MemoryStore)(nil)
