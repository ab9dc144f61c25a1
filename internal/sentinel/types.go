package sentinel

import "time"

// Submission is one image-bearing post in a community. The same shape is
// returned by the platform listings and persisted by the store; the
// Blacklisted flag is sticky — once set it marks the submission as a known
// bad source whose exact duplicates are always removed.
type Submission struct {
	ID            string
	Community     string
	Created       time.Time
	Author        string
	Title         string
	URL           string
	Comments      int
	Score         int
	Deleted       bool
	Removed       bool
	RemovalReason string
	Blacklisted   bool
	Processed     bool

	// SelfPost marks text posts. Set by the platform listings, never stored;
	// self posts are skipped before any persistence happens.
	SelfPost bool
}

// MediaRecord is the stored fingerprint of one image frame, created when a
// submission's image passes the minimum-dimension gate. Single images carry
// FrameNumber=1, FrameCount=1; the schema leaves room for multi-frame media.
type MediaRecord struct {
	Fingerprint  Fingerprint
	SubmissionID string
	Community    string
	FrameNumber  int
	FrameCount   int
	Width        int
	Height       int
	Pixels       int
	FileSize     int64
}

// CommunitySettings holds the per-community moderation knobs. Thresholds are
// percentages in [0,100]; both comparisons against them are strict.
type CommunitySettings struct {
	Community       string
	Enabled         bool
	Imported        bool
	ReportThreshold int
	RemoveThreshold int
	RemovalMessage  string
}

// MatchResult is one corpus hit above the report threshold. It exists only
// for the duration of a single enforcement decision and is never persisted.
type MatchResult struct {
	Parent     *Submission
	Similarity int
	Width      int
	Height     int
	Live       *LiveStatus
}

// LiveStatus is the current state of a submission on the platform.
type LiveStatus struct {
	Score    int
	Comments int
	Status   string
}

// Live status values as rendered in the comparison table.
const (
	StatusActive  = "Active"
	StatusRemoved = "Removed"
	StatusDeleted = "Deleted"
)
