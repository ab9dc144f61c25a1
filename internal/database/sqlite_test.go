package database_test

import (
	"errors"
	"testing"
	"time"

	"repost-sentinel/internal/sentinel"
	"repost-sentinel/internal/testutil"
)

func sampleSubmission(id string) *sentinel.Submission {
	return &sentinel.Submission{
		ID:            id,
		Community:     "pics",
		Created:       time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC),
		Author:        "alice",
		Title:         "a picture",
		URL:           "https://i.imgur.com/" + id + ".jpg",
		Comments:      12,
		Score:         340,
		RemovalReason: "",
		Processed:     true,
	}
}

func TestSubmissionRoundTrip(t *testing.T) {
	store := testutil.NewTestStore(t)

	want := sampleSubmission("sub001")
	if err := store.InsertSubmission(want); err != nil {
		t.Fatalf("InsertSubmission() error = %v", err)
	}

	got, err := store.FindSubmission("sub001")
	if err != nil {
		t.Fatalf("FindSubmission() error = %v", err)
	}
	if got == nil {
		t.Fatal("FindSubmission() returned nil for stored submission")
	}

	if got.ID != want.ID || got.Community != want.Community || got.Author != want.Author {
		t.Errorf("identity fields = %s/%s/%s, want %s/%s/%s",
			got.ID, got.Community, got.Author, want.ID, want.Community, want.Author)
	}
	if got.Title != want.Title || got.URL != want.URL {
		t.Errorf("content fields = %q/%q", got.Title, got.URL)
	}
	if got.Comments != want.Comments || got.Score != want.Score {
		t.Errorf("counters = %d/%d, want %d/%d", got.Comments, got.Score, want.Comments, want.Score)
	}
	if !got.Created.Equal(want.Created) {
		t.Errorf("Created = %v, want %v", got.Created, want.Created)
	}
	if !got.Processed || got.Deleted || got.Removed || got.Blacklisted {
		t.Errorf("flags = %+v", got)
	}
}

func TestInsertSubmissionDuplicate(t *testing.T) {
	store := testutil.NewTestStore(t)

	if err := store.InsertSubmission(sampleSubmission("sub001")); err != nil {
		t.Fatalf("InsertSubmission() error = %v", err)
	}
	err := store.InsertSubmission(sampleSubmission("sub001"))
	if !errors.Is(err, sentinel.ErrDuplicateSubmission) {
		t.Errorf("InsertSubmission() duplicate error = %v, want ErrDuplicateSubmission", err)
	}
}

func TestFindSubmissionAbsent(t *testing.T) {
	store := testutil.NewTestStore(t)

	got, err := store.FindSubmission("nosuch")
	if err != nil {
		t.Fatalf("FindSubmission() error = %v", err)
	}
	if got != nil {
		t.Errorf("FindSubmission(absent) = %+v, want nil", got)
	}
}

func TestSetSubmissionBlacklist(t *testing.T) {
	store := testutil.NewTestStore(t)

	if err := store.InsertSubmission(sampleSubmission("sub001")); err != nil {
		t.Fatalf("InsertSubmission() error = %v", err)
	}
	if err := store.SetSubmissionBlacklist("sub001"); err != nil {
		t.Fatalf("SetSubmissionBlacklist() error = %v", err)
	}

	got, err := store.FindSubmission("sub001")
	if err != nil {
		t.Fatalf("FindSubmission() error = %v", err)
	}
	if !got.Blacklisted {
		t.Error("Blacklisted not set")
	}
}

func TestMediaByCommunity(t *testing.T) {
	store := testutil.NewTestStore(t)

	// High-bit fingerprints must survive the int64 column round trip.
	fingerprints := []sentinel.Fingerprint{
		0xFFFFFFFFFFFFFFFF,
		sentinel.PlaceholderFingerprint,
		0x0000000000000001,
	}
	for i, fp := range fingerprints {
		if err := store.InsertMedia(&sentinel.MediaRecord{
			Fingerprint:  fp,
			SubmissionID: sampleSubmission("sub001").ID,
			Community:    "pics",
			FrameNumber:  1,
			FrameCount:   1,
			Width:        800 + i,
			Height:       600,
			Pixels:       (800 + i) * 600,
			FileSize:     1024,
		}); err != nil {
			t.Fatalf("InsertMedia(%d) error = %v", i, err)
		}
	}

	// Rows in another community or with another frame count stay invisible.
	if err := store.InsertMedia(&sentinel.MediaRecord{
		Fingerprint: 42, SubmissionID: "subX", Community: "gifs",
		FrameNumber: 1, FrameCount: 1, Width: 800, Height: 600, Pixels: 480000, FileSize: 1,
	}); err != nil {
		t.Fatalf("InsertMedia(other community) error = %v", err)
	}
	if err := store.InsertMedia(&sentinel.MediaRecord{
		Fingerprint: 43, SubmissionID: "subY", Community: "pics",
		FrameNumber: 1, FrameCount: 12, Width: 800, Height: 600, Pixels: 480000, FileSize: 1,
	}); err != nil {
		t.Fatalf("InsertMedia(multi-frame) error = %v", err)
	}

	got, err := store.MediaByCommunity("pics", 1)
	if err != nil {
		t.Fatalf("MediaByCommunity() error = %v", err)
	}
	if len(got) != len(fingerprints) {
		t.Fatalf("got %d rows, want %d", len(got), len(fingerprints))
	}
	for i, row := range got {
		if row.Fingerprint != fingerprints[i] {
			t.Errorf("row %d fingerprint = %#x, want %#x", i, row.Fingerprint, fingerprints[i])
		}
	}
	// Insertion order is retrieval order.
	if got[0].Width != 800 || got[2].Width != 802 {
		t.Errorf("rows out of order: widths %d, %d, %d", got[0].Width, got[1].Width, got[2].Width)
	}
}

func TestCommunitySettings(t *testing.T) {
	t.Run("new community gets schema defaults", func(t *testing.T) {
		store := testutil.NewTestStore(t)

		if err := store.UpsertCommunitySettings("pics", true); err != nil {
			t.Fatalf("UpsertCommunitySettings() error = %v", err)
		}

		all, err := store.CommunitySettings()
		if err != nil {
			t.Fatalf("CommunitySettings() error = %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("got %d settings rows, want 1", len(all))
		}
		settings := all[0]
		if !settings.Enabled || settings.Imported {
			t.Errorf("flags = enabled %v, imported %v", settings.Enabled, settings.Imported)
		}
		if settings.ReportThreshold != 85 || settings.RemoveThreshold != 92 {
			t.Errorf("thresholds = %d/%d, want 85/92", settings.ReportThreshold, settings.RemoveThreshold)
		}
		if settings.RemovalMessage == "" {
			t.Error("default removal message is empty")
		}
	})

	t.Run("upsert toggles enabled and keeps thresholds", func(t *testing.T) {
		store := testutil.NewTestStore(t)

		if err := store.UpsertCommunitySettings("pics", true); err != nil {
			t.Fatalf("UpsertCommunitySettings() error = %v", err)
		}
		if err := store.SetCommunityImported("pics"); err != nil {
			t.Fatalf("SetCommunityImported() error = %v", err)
		}
		if err := store.UpsertCommunitySettings("pics", false); err != nil {
			t.Fatalf("UpsertCommunitySettings() error = %v", err)
		}

		all, err := store.CommunitySettings()
		if err != nil {
			t.Fatalf("CommunitySettings() error = %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("got %d settings rows, want 1", len(all))
		}
		settings := all[0]
		if settings.Enabled {
			t.Error("community still enabled after disable")
		}
		if !settings.Imported {
			t.Error("imported flag lost on upsert")
		}
		if settings.ReportThreshold != 85 || settings.RemoveThreshold != 92 {
			t.Errorf("thresholds changed: %d/%d", settings.ReportThreshold, settings.RemoveThreshold)
		}
	})

	t.Run("sorted by community", func(t *testing.T) {
		store := testutil.NewTestStore(t)

		for _, community := range []string{"zebras", "aww", "pics"} {
			if err := store.UpsertCommunitySettings(community, true); err != nil {
				t.Fatalf("UpsertCommunitySettings(%s) error = %v", community, err)
			}
		}

		all, err := store.CommunitySettings()
		if err != nil {
			t.Fatalf("CommunitySettings() error = %v", err)
		}
		want := []string{"aww", "pics", "zebras"}
		for i, settings := range all {
			if settings.Community != want[i] {
				t.Errorf("row %d = %s, want %s", i, settings.Community, want[i])
			}
		}
	})
}
