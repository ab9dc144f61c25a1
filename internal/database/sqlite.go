package database

import (
	"database/sql"
	"errors"
	"fmt"

	"repost-sentinel/internal/database/migrations"
	"repost-sentinel/internal/sentinel"

	"github.com/mattn/go-sqlite3"
)

// SQLiteStore implements the sentinel.Store interface using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tools and tests that need a configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite ships with foreign keys off for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

const submissionColumns = `id, community, created_at, author, title, url, comments, score,
	deleted, removed, removal_reason, blacklist, processed`

func scanSubmission(row interface{ Scan(...any) error }) (*sentinel.Submission, error) {
	var sub sentinel.Submission
	err := row.Scan(
		&sub.ID, &sub.Community, &sub.Created, &sub.Author, &sub.Title, &sub.URL,
		&sub.Comments, &sub.Score, &sub.Deleted, &sub.Removed, &sub.RemovalReason,
		&sub.Blacklisted, &sub.Processed,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *SQLiteStore) FindSubmission(id string) (*sentinel.Submission, error) {
	row := s.db.QueryRow(`SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)
	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding submission: %w", err)
	}
	return sub, nil
}

func (s *SQLiteStore) InsertSubmission(sub *sentinel.Submission) error {
	_, err := s.db.Exec(`INSERT INTO submissions (`+submissionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Community, sub.Created, sub.Author, sub.Title, sub.URL,
		sub.Comments, sub.Score, sub.Deleted, sub.Removed, sub.RemovalReason,
		sub.Blacklisted, sub.Processed,
	)
	if err != nil {
		if isConstraintError(err) {
			return sentinel.ErrDuplicateSubmission
		}
		return fmt.Errorf("inserting submission: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetSubmissionBlacklist(id string) error {
	if _, err := s.db.Exec(`UPDATE submissions SET blacklist = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("blacklisting submission: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertMedia(media *sentinel.MediaRecord) error {
	_, err := s.db.Exec(`INSERT INTO media (hash, submission_id, community, frame_number,
		frame_count, frame_width, frame_height, total_pixels, file_size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(media.Fingerprint), media.SubmissionID, media.Community, media.FrameNumber,
		media.FrameCount, media.Width, media.Height, media.Pixels, media.FileSize,
	)
	if err != nil {
		return fmt.Errorf("inserting media: %w", err)
	}
	return nil
}

func (s *SQLiteStore) MediaByCommunity(community string, frameCount int) ([]*sentinel.MediaRecord, error) {
	rows, err := s.db.Query(`SELECT hash, submission_id, community, frame_number, frame_count,
		frame_width, frame_height, total_pixels, file_size
		FROM media WHERE community = ? AND frame_count = ? ORDER BY id`,
		community, frameCount,
	)
	if err != nil {
		return nil, fmt.Errorf("querying media: %w", err)
	}
	defer rows.Close()

	var result []*sentinel.MediaRecord
	for rows.Next() {
		var media sentinel.MediaRecord
		var hash int64
		err := rows.Scan(
			&hash, &media.SubmissionID, &media.Community, &media.FrameNumber,
			&media.FrameCount, &media.Width, &media.Height, &media.Pixels, &media.FileSize,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning media row: %w", err)
		}
		media.Fingerprint = sentinel.Fingerprint(uint64(hash))
		result = append(result, &media)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading media rows: %w", err)
	}
	return result, nil
}

func (s *SQLiteStore) CommunitySettings() ([]*sentinel.CommunitySettings, error) {
	rows, err := s.db.Query(`SELECT community, enabled, imported, report_threshold,
		remove_threshold, removal_message FROM community_settings ORDER BY community`)
	if err != nil {
		return nil, fmt.Errorf("querying community settings: %w", err)
	}
	defer rows.Close()

	var result []*sentinel.CommunitySettings
	for rows.Next() {
		var settings sentinel.CommunitySettings
		err := rows.Scan(
			&settings.Community, &settings.Enabled, &settings.Imported,
			&settings.ReportThreshold, &settings.RemoveThreshold, &settings.RemovalMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning settings row: %w", err)
		}
		result = append(result, &settings)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading settings rows: %w", err)
	}
	return result, nil
}

func (s *SQLiteStore) UpsertCommunitySettings(community string, enabled bool) error {
	// New rows get the schema's default thresholds and removal message.
	_, err := s.db.Exec(`INSERT INTO community_settings (community, enabled) VALUES (?, ?)
		ON CONFLICT (community) DO UPDATE SET enabled = excluded.enabled`,
		community, enabled,
	)
	if err != nil {
		return fmt.Errorf("upserting community settings: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetCommunityImported(community string) error {
	if _, err := s.db.Exec(`UPDATE community_settings SET imported = 1 WHERE community = ?`, community); err != nil {
		return fmt.Errorf("marking community imported: %w", err)
	}
	return nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteStore) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrateUp brings the database schema to the latest version.
func (s *SQLiteStore) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// isConstraintError reports whether err is a SQLite uniqueness violation.
func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

// Compile-time check that SQLiteStore implements the sentinel.Store interface
var _ sentinel.Store = (*SQLiteStore)(nil)
