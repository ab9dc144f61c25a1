package testutil

import (
	"testing"

	"repost-sentinel/internal/database"
	"repost-sentinel/internal/sentinel"
)

// NewTestStore creates a new in-memory SQLite store with schema applied.
// The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) sentinel.Store {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if _, err := sqlDB.Exec(database.Schema); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	store := database.NewSQLiteStoreFromDB(sqlDB)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// SeedCommunity inserts a settings row and returns it with the given
// thresholds, enabled and imported.
func SeedCommunity(t *testing.T, store sentinel.Store, community string, reportThreshold, removeThreshold int) *sentinel.CommunitySettings {
	t.Helper()

	if err := store.UpsertCommunitySettings(community, true); err != nil {
		t.Fatalf("failed to seed community: %v", err)
	}
	if err := store.SetCommunityImported(community); err != nil {
		t.Fatalf("failed to mark community imported: %v", err)
	}

	return &sentinel.CommunitySettings{
		Community:       community,
		Enabled:         true,
		Imported:        true,
		ReportThreshold: reportThreshold,
		RemoveThreshold: removeThreshold,
		RemovalMessage:  "Removed as a repost.",
	}
}
