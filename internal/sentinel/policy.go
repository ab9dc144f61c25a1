package sentinel

import (
	"errors"
	"fmt"
	"strings"
)

const matchDateFormat = "January 02, 2006 - 15:04:05"

// placeholderReportReason is attached to reports of dead placeholder images.
const placeholderReportReason = "Image removed from imgur."

// Enforce applies the moderation decision for a freshly fingerprinted
// submission. Removal fires at most once per invocation, and an exact match
// to a blacklisted parent removes silently: no report, no comparison table.
// A submission the platform has already removed is left alone.
func (s *Service) Enforce(sub *Submission, settings *CommunitySettings, media *MediaRecord) error {
	if sub.Removed {
		s.logger.Debug("submission already moderated", "id", sub.ID)
		return nil
	}

	if media.Fingerprint == PlaceholderFingerprint {
		s.report(sub, placeholderReportReason)
		return nil
	}

	scan, err := s.scanCorpus(sub, settings, media)
	if err != nil {
		return err
	}

	if scan.Report && !scan.SameAuthor && !scan.Blacklist {
		reason := fmt.Sprintf("Possible repost: %d similar - %d active",
			len(scan.Matches), scan.ActiveMatches)
		s.report(sub, reason)
		s.postMatchTable(sub, media, scan.Matches)
	}

	if scan.Blacklist || scan.Remove {
		s.removeWithNotice(sub, settings)
	}
	return nil
}

// report flags the submission for moderator review. A permission fault is
// logged and swallowed.
func (s *Service) report(sub *Submission, reason string) {
	if err := s.platform.Report(sub.ID, reason); err != nil {
		if errors.Is(err, ErrForbidden) {
			s.logger.Warn("missing permission to report", "id", sub.ID)
			return
		}
		s.logger.Error("failed to report submission", "id", sub.ID, "error", err)
		return
	}
	s.logger.Info("reported submission", "id", sub.ID, "reason", reason)
}

// postMatchTable replies with the comparison table, then immediately removes
// the reply as non-spam so it stays visible to moderators only.
func (s *Service) postMatchTable(sub *Submission, media *MediaRecord, matches []*MatchResult) {
	commentID, err := s.platform.Reply(sub.ID, renderMatchTable(sub, media, matches))
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			s.logger.Warn("missing permission to reply", "id", sub.ID)
			return
		}
		s.logger.Error("failed to post match table", "id", sub.ID, "error", err)
		return
	}

	if err := s.platform.RemoveComment(commentID, false); err != nil {
		if errors.Is(err, ErrForbidden) {
			s.logger.Warn("missing permission to retract match table", "comment", commentID)
			return
		}
		s.logger.Error("failed to retract match table", "comment", commentID, "error", err)
	}
}

// removeWithNotice removes the submission as non-spam and pins the
// community's fixed removal message under it.
func (s *Service) removeWithNotice(sub *Submission, settings *CommunitySettings) {
	if err := s.platform.RemoveSubmission(sub.ID, false); err != nil {
		if errors.Is(err, ErrForbidden) {
			s.logger.Warn("missing permission to remove", "id", sub.ID)
			return
		}
		s.logger.Error("failed to remove submission", "id", sub.ID, "error", err)
		return
	}
	s.logger.Info("removed submission", "id", sub.ID)

	commentID, err := s.platform.Reply(sub.ID, settings.RemovalMessage)
	if err != nil {
		s.logger.Error("failed to post removal notice", "id", sub.ID, "error", err)
		return
	}
	if err := s.platform.DistinguishSticky(commentID); err != nil {
		s.logger.Error("failed to pin removal notice", "comment", commentID, "error", err)
	}
}

// renderMatchTable renders the moderator-facing comparison table: the
// candidate's stats followed by one row per resolved match.
func renderMatchTable(sub *Submission, media *MediaRecord, matches []*MatchResult) string {
	var rows strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&rows, "/u/%s | %s | %d%% | [%d x %d](%s) | [%s](https://redd.it/%s) | %d | %d | %s\n",
			m.Parent.Author,
			m.Parent.Created.Format(matchDateFormat),
			m.Similarity,
			m.Width,
			m.Height,
			m.Parent.URL,
			m.Parent.Title,
			m.Parent.ID,
			m.Live.Score,
			m.Live.Comments,
			m.Live.Status,
		)
	}

	return fmt.Sprintf(
		"**OP:** %s\n\n**Image Stats:**\n\n* Width: %d\n\n* Height: %d\n\n* Pixels: %d\n\n* Size: %d\n\n"+
			"**History:**\n\nUser | Date | Match %% | Image | Title | Karma | Comments | Status\n"+
			":---|:---|:---|:---|:---|:---|:---|:---\n%s",
		sub.Author,
		media.Width,
		media.Height,
		media.Pixels,
		media.FileSize,
		rows.String(),
	)
}
