package database

// Schema is the full current schema, kept in sync with the migration files.
// Tests apply it directly to in-memory databases instead of running the
// migration machinery. Regenerate with 'go generate ./internal/database'.
const Schema = `
CREATE TABLE submissions (
    id TEXT PRIMARY KEY,
    community TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    author TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL DEFAULT '',
    comments INTEGER NOT NULL DEFAULT 0,
    score INTEGER NOT NULL DEFAULT 0,
    deleted BOOLEAN NOT NULL DEFAULT 0,
    removed BOOLEAN NOT NULL DEFAULT 0,
    removal_reason TEXT NOT NULL DEFAULT '',
    blacklist BOOLEAN NOT NULL DEFAULT 0,
    processed BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE media (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    hash INTEGER NOT NULL,
    submission_id TEXT NOT NULL,
    community TEXT NOT NULL,
    frame_number INTEGER NOT NULL DEFAULT 1,
    frame_count INTEGER NOT NULL DEFAULT 1,
    frame_width INTEGER NOT NULL,
    frame_height INTEGER NOT NULL,
    total_pixels INTEGER NOT NULL,
    file_size INTEGER NOT NULL
);

CREATE INDEX idx_media_community_frames ON media (community, frame_count);

CREATE TABLE community_settings (
    community TEXT PRIMARY KEY,
    enabled BOOLEAN NOT NULL DEFAULT 0,
    imported BOOLEAN NOT NULL DEFAULT 0,
    report_threshold INTEGER NOT NULL DEFAULT 85,
    remove_threshold INTEGER NOT NULL DEFAULT 92,
    removal_message TEXT NOT NULL DEFAULT 'Your submission has been removed because it is a repost of a recent or notable submission in this community. If you believe this is a mistake, please contact the moderators.'
);
`
