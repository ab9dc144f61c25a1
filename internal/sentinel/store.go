package sentinel

import "errors"

// ErrDuplicateSubmission is returned by Store.InsertSubmission when the id is
// already present. Ingestion treats it as a no-op, not a failure.
var ErrDuplicateSubmission = errors.New("submission already recorded")

// Store provides persistent storage for submissions, media fingerprints and
// per-community settings. The media corpus is append-only from the core's
// point of view.
type Store interface {
	// FindSubmission returns the submission with the given id, or nil when absent.
	FindSubmission(id string) (*Submission, error)

	// InsertSubmission records a submission. Returns ErrDuplicateSubmission
	// if the id already exists.
	InsertSubmission(sub *Submission) error

	// SetSubmissionBlacklist sets the sticky blacklist flag on a submission.
	SetSubmissionBlacklist(id string) error

	// InsertMedia records one image frame's fingerprint and stats.
	InsertMedia(media *MediaRecord) error

	// MediaByCommunity returns the stored media rows for a community with the
	// given frame count, in insertion order.
	MediaByCommunity(community string, frameCount int) ([]*MediaRecord, error)

	// CommunitySettings returns the settings rows for every known community.
	CommunitySettings() ([]*CommunitySettings, error)

	// UpsertCommunitySettings enables or disables a community, inserting a
	// row with default thresholds when the community is new.
	UpsertCommunitySettings(community string, enabled bool) error

	// SetCommunityImported marks a community's full-history import complete.
	SetCommunityImported(community string) error

	// Close releases the underlying connection.
	Close() error
}
