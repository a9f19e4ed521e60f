package kv_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/kv"
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/testutil"
)

func newSQLiteStore(t *testing.T, clock *testutil.StubClock) *kv.SQLiteStore {
	t.Helper()
	store, err := kv.NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"), clock)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t, testutil.FixedClock())

	if err := store.Put(ctx, "k1", []byte("v1"), 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, []byte("v1")) {
		t.Errorf("Get() = %q, want %q", got, "v1")
	}

	// Upsert replaces value and TTL.
	if err := store.Put(ctx, "k1", []byte("v2"), 0); err != nil {
		t.Fatalf("Put() upsert error = %v", err)
	}
	got, _ = store.Get(ctx, "k1")
	if !bytes.Equal(got, []byte("v2")) {
		t.Errorf("Get() after upsert = %q, want %q", got, "v2")
	}

	missing, err := store.Get(ctx, "absent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if missing != nil {
		t.Errorf("Get() absent key = %q, want nil", missing)
	}
}

func TestSQLiteStore_TTL(t *testing.T) {
	ctx := context.Background()
	clock := testutil.FixedClock()
	store := newSQLiteStore(t, clock)

	if err := store.Put(ctx, "ephemeral", []byte("x"), time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(ctx, "durable", []byte("y"), 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	clock.Advance(2 * time.Minute)

	if got, _ := store.Get(ctx, "ephemeral"); got != nil {
		t.Errorf("expired key still readable: %q", got)
	}
	if got, _ := store.Get(ctx, "durable"); got == nil {
		t.Error("key without TTL expired")
	}

	page, err := store.List(ctx, "", "", 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Keys) != 1 || page.Keys[0] != "durable" {
		t.Errorf("List() after expiry = %v, want [durable]", page.Keys)
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t, testutil.FixedClock())

	if err := store.Put(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ := store.Get(ctx, "k"); got != nil {
		t.Error("key readable after delete")
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() absent key error = %v", err)
	}
}

func TestSQLiteStore_List(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t, testutil.FixedClock())

	for _, k := range []string{"a:1", "a:2", "a:3", "b:1"} {
		if err := store.Put(ctx, k, []byte("v"), 0); err != nil {
			t.Fatalf("Put(%s) error = %v", k, err)
		}
	}

	t.Run("prefix filters and sorts", func(t *testing.T) {
		page, err := store.List(ctx, "a:", "", 10)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		want := []string{"a:1", "a:2", "a:3"}
		if len(page.Keys) != len(want) {
			t.Fatalf("List() = %v, want %v", page.Keys, want)
		}
		for i, k := range want {
			if page.Keys[i] != k {
				t.Errorf("keys[%d] = %q, want %q", i, page.Keys[i], k)
			}
		}
		if !page.Complete {
			t.Error("Complete = false for full listing")
		}
	})

	t.Run("pages with keyset cursor", func(t *testing.T) {
		first, err := store.List(ctx, "a:", "", 2)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(first.Keys) != 2 || first.Complete {
			t.Fatalf("first page = %v complete=%v", first.Keys, first.Complete)
		}

		rest, err := store.List(ctx, "a:", first.Cursor, 2)
		if err != nil {
			t.Fatalf("List() with cursor error = %v", err)
		}
		if len(rest.Keys) != 1 || rest.Keys[0] != "a:3" || !rest.Complete {
			t.Errorf("second page = %v complete=%v", rest.Keys, rest.Complete)
		}
	})

	t.Run("underscore in prefix is literal", func(t *testing.T) {
		// Sanitized segments keep underscores; LIKE must not treat them
		// as a single-character wildcard.
		if err := store.Put(ctx, "tenant:user:my_org:1", []byte("v"), 0); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := store.Put(ctx, "tenant:user:myxorg:1", []byte("v"), 0); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		page, err := store.List(ctx, "tenant:user:my_org:", "", 10)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(page.Keys) != 1 || page.Keys[0] != "tenant:user:my_org:1" {
			t.Errorf("List() = %v, want only the underscore key", page.Keys)
		}
	})
}

func TestSQLiteStore_Sweep(t *testing.T) {
	ctx := context.Background()
	clock := testutil.FixedClock()
	store := newSQLiteStore(t, clock)

	if err := store.Put(ctx, "expired", []byte("x"), time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(ctx, "alive", []byte("y"), time.Hour); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(ctx, "forever", []byte("z"), 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	clock.Advance(10 * time.Minute)

	removed, err := store.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Sweep() removed %d rows, want 1", removed)
	}
	if got, _ := store.Get(ctx, "alive"); got == nil {
		t.Error("unexpired key removed by sweep")
	}
	if got, _ := store.Get(ctx, "forever"); got == nil {
		t.Error("TTL-less key removed by sweep")
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	store, err := kv.NewSQLiteStore(path, testutil.FixedClock())
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := store.Put(ctx, "k", []byte("persisted"), 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := kv.NewSQLiteStore(path, testutil.FixedClock())
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, []byte("persisted")) {
		t.Errorf("Get() after reopen = %q, want %q", got, "persisted")
	}
}
