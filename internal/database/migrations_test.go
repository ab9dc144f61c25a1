package database_test

import (
	"strings"
	"testing"

	"repost-sentinel/internal/database"
)

func newMemoryStore(t *testing.T) *database.SQLiteStore {
	t.Helper()

	store, err := database.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMigrations(t *testing.T) {
	t.Run("fresh database fails the status check", func(t *testing.T) {
		store := newMemoryStore(t)

		err := store.CheckMigrations()
		if err == nil {
			t.Fatal("CheckMigrations() = nil on unmigrated database")
		}
		if !strings.Contains(err.Error(), "sentinel migrate") {
			t.Errorf("CheckMigrations() error = %v, want hint to run migrate", err)
		}
	})

	t.Run("migrate up then check passes", func(t *testing.T) {
		store := newMemoryStore(t)

		if err := store.MigrateUp(); err != nil {
			t.Fatalf("MigrateUp() error = %v", err)
		}
		if err := store.CheckMigrations(); err != nil {
			t.Errorf("CheckMigrations() after migrate error = %v", err)
		}
	})

	t.Run("migrate up is idempotent", func(t *testing.T) {
		store := newMemoryStore(t)

		for i := 0; i < 2; i++ {
			if err := store.MigrateUp(); err != nil {
				t.Fatalf("MigrateUp() pass %d error = %v", i+1, err)
			}
		}
	})

	t.Run("migrated schema accepts writes", func(t *testing.T) {
		store := newMemoryStore(t)

		if err := store.MigrateUp(); err != nil {
			t.Fatalf("MigrateUp() error = %v", err)
		}
		if err := store.UpsertCommunitySettings("pics", true); err != nil {
			t.Errorf("UpsertCommunitySettings() on migrated schema error = %v", err)
		}
	})
}
