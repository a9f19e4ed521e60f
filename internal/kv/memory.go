package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/screenshot"
)

// MemoryStore is an in-memory implementation of the KVStore interface,
// useful for testing and single-process deployments. It is safe for
// concurrent use. Expired keys are dropped lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   screenshot.Clock
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(clock screenshot.Clock) *MemoryStore {
	if clock == nil {
		clock = screenshot.RealClock{}
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		clock:   clock,
	}
}

// Put stores a value, with an optional TTL.
func (m *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.clock.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Get retrieves a value, or (nil, nil) when absent or expired.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	if m.expired(e) {
		delete(m.entries, key)
		return nil, nil
	}
	return append([]byte(nil), e.value...), nil
}

// Delete removes a key. Deleting an absent key is a no-op.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// List returns keys matching prefix in lexicographic order. The cursor is
// the last key of the previous page.
func (m *MemoryStore) List(_ context.Context, prefix, cursor string, limit int) (*screenshot.KVPage, error) {
	if limit <= 0 {
		limit = 100
	}

	m.mu.RLock()
	keys := make([]string, 0)
	for k, e := range m.entries {
		if strings.HasPrefix(k, prefix) && k > cursor && !m.expired(e) {
			keys = append(keys, k)
		}
	}
	m.mu.RUnlock()
	sort.Strings(keys)

	page := &screenshot.KVPage{Complete: true}
	if len(keys) > limit {
		keys = keys[:limit]
		page.Complete = false
		page.Cursor = keys[len(keys)-1]
	}
	page.Keys = keys
	return page, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(m.clock.Now())
}

// Compile-time check that MemoryStore implements the KVStore interface.
var _ screenshot.KVStore = (*MemoryStore)(nil)
