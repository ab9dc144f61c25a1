package sentinel

import "io"

// TopPeriod selects the time window for a top-scored listing.
type TopPeriod string

const (
	TopAll   TopPeriod = "all"
	TopYear  TopPeriod = "year"
	TopMonth TopPeriod = "month"
)

// Message is one inbox item. Non-message items (comment replies, mentions)
// arrive with IsMessage=false and are only ever marked read.
type Message struct {
	ID        string
	Author    string
	Subject   string
	Body      string
	Community string
	IsMessage bool
}

// Platform is the client for the community platform hosting the submissions.
// Implementations own all network timeouts; errors surface to the core as
// Fault values (see faults.go) and are never retried inside a call.
type Platform interface {
	// NewSubmissions returns up to limit of the newest submissions.
	NewSubmissions(community string, limit int) ([]*Submission, error)

	// TopSubmissions returns the top-scored submissions for a period.
	TopSubmissions(community string, period TopPeriod) ([]*Submission, error)

	// FetchSubmission returns a single submission by id.
	FetchSubmission(id string) (*Submission, error)

	// LiveStatus returns the current score, comment count and status of a
	// submission.
	LiveStatus(id string) (*LiveStatus, error)

	// Download streams the raw bytes at url into w.
	Download(url string, w io.Writer) error

	// Report flags a submission for moderator review.
	Report(submissionID, reason string) error

	// Reply posts a comment under a submission and returns the comment's
	// platform id.
	Reply(submissionID, body string) (string, error)

	// RemoveSubmission removes a submission as a moderator action.
	// spam controls whether the removal counts against the author's record.
	RemoveSubmission(id string, spam bool) error

	// RemoveComment removes a comment, typically the bot's own reply.
	RemoveComment(id string, spam bool) error

	// DistinguishSticky marks a comment as a distinguished, pinned
	// moderator comment.
	DistinguishSticky(commentID string) error

	// UnreadMessages returns the unread inbox items.
	UnreadMessages() ([]*Message, error)

	// MarkRead marks one inbox item as read.
	MarkRead(id string) error

	// Moderators returns the usernames moderating a community.
	Moderators(community string) ([]string, error)

	// AcceptModeratorInvite accepts a pending moderator invitation.
	AcceptModeratorInvite(community string) error
}
