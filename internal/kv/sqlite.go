package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/kv/migrations"
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/screenshot"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the KVStore interface on a single SQLite table.
// TTLs are stored as an expires_at column and enforced on read; Sweep
// reclaims expired rows for long-lived databases.
type SQLiteStore struct {
	db    *sql.DB
	clock screenshot.Clock
}

// NewSQLiteStore opens (and migrates) a SQLite-backed store.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string, clock screenshot.Clock) (*SQLiteStore, error) {
	if clock == nil {
		clock = screenshot.RealClock{}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY errors under concurrent request handlers.
	db.SetMaxOpenConns(1)

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating kv schema: %w", err)
	}

	return &SQLiteStore{db: db, clock: clock}, nil
}

// Put stores a value, with an optional TTL.
func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt any
	if ttl > 0 {
		expiresAt = s.clock.Now().UTC().Add(ttl)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("writing key %s: %w", key, err)
	}
	return nil
}

// Get retrieves a value, or (nil, nil) when absent or expired.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	var expiresAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv_entries WHERE key = ?`, key).Scan(&value, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading key %s: %w", key, err)
	}
	if expiresAt.Valid && !expiresAt.Time.After(s.clock.Now().UTC()) {
		return nil, nil
	}
	return value, nil
}

// Delete removes a key. Deleting an absent key is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}
	return nil
}

// List returns keys matching prefix in lexicographic order. The cursor is
// the last key of the previous page.
func (s *SQLiteStore) List(ctx context.Context, prefix, cursor string, limit int) (*screenshot.KVPage, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT key FROM kv_entries
		WHERE key LIKE ? ESCAPE '\'
		  AND key > ?
		  AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY key
		LIMIT ?`,
		escapeLike(prefix)+"%", cursor, s.clock.Now().UTC(), limit+1)
	if err != nil {
		return nil, fmt.Errorf("listing prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing prefix %s: %w", prefix, err)
	}

	page := &screenshot.KVPage{Complete: true}
	if len(keys) > limit {
		keys = keys[:limit]
		page.Complete = false
		page.Cursor = keys[len(keys)-1]
	}
	page.Keys = keys
	return page, nil
}

// Sweep deletes all expired rows. Intended to run alongside the
// screenshot-level expiry sweep.
func (s *SQLiteStore) Sweep(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE expires_at IS NOT NULL AND expires_at <= ?`, s.clock.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweeping expired keys: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// escapeLike escapes LIKE wildcards in a literal prefix. Sanitized key
// segments may contain underscores, which LIKE treats as a wildcard.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Compile-time check that SQLiteStore implements the KVStore interface.
var _ screenshot.KVStore = (*SQLiteStore)(nil)
