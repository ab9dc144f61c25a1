package sentinel

import "fmt"

// reportMatchCap bounds how many matches are resolved and rendered per
// enforcement. Matches beyond the cap are not reported, trading completeness
// for bounded latency on large corpora; the remove and blacklist flags are
// still computed over the full scanned set.
const reportMatchCap = 10

// ScanResult is the outcome of matching one candidate fingerprint against a
// community's corpus.
type ScanResult struct {
	// Matches holds the resolved report-eligible matches, at most
	// reportMatchCap of them, in corpus retrieval order.
	Matches []*MatchResult

	// Report is set when any match strictly exceeds the report threshold.
	Report bool

	// SameAuthor is set when a report-eligible match was posted by the
	// candidate's own author. Self-reposts are not violations.
	SameAuthor bool

	// Remove is set when any scanned row strictly exceeds the remove threshold.
	Remove bool

	// Blacklist is set when an exact match points at a blacklisted parent.
	Blacklist bool

	// ActiveMatches counts resolved matches whose submission is still live.
	ActiveMatches int
}

// scanCorpus compares the candidate's fingerprint against every stored
// single-frame fingerprint in the community, in one pass over retrieval
// order. Report-eligible rows within the cap resolve the parent submission
// from the store and its live status from the platform; exact matches always
// resolve the parent so the blacklist check sees the full set.
func (s *Service) scanCorpus(sub *Submission, settings *CommunitySettings, media *MediaRecord) (*ScanResult, error) {
	corpus, err := s.store.MediaByCommunity(settings.Community, 1)
	if err != nil {
		return nil, fmt.Errorf("loading media corpus for %s: %w", settings.Community, err)
	}

	result := &ScanResult{}

	for _, row := range corpus {
		similarity := Similarity(media.Fingerprint, row.Fingerprint)

		var parent *Submission
		needParent := similarity == 100 ||
			(similarity > settings.ReportThreshold && len(result.Matches) < reportMatchCap)
		if needParent {
			parent, err = s.store.FindSubmission(row.SubmissionID)
			if err != nil {
				return nil, fmt.Errorf("loading matched submission %s: %w", row.SubmissionID, err)
			}
			if parent == nil {
				s.logger.Warn("media row without submission", "id", row.SubmissionID)
				continue
			}
		}

		if similarity > settings.ReportThreshold {
			result.Report = true
			if parent != nil && parent.Author == sub.Author {
				result.SameAuthor = true
			}
			if parent != nil && len(result.Matches) < reportMatchCap {
				match := &MatchResult{
					Parent:     parent,
					Similarity: similarity,
					Width:      media.Width,
					Height:     media.Height,
					Live:       s.liveStatus(parent.ID),
				}
				result.Matches = append(result.Matches, match)
				if match.Live.Status == StatusActive {
					result.ActiveMatches++
				}
			}
		}

		if similarity > settings.RemoveThreshold {
			result.Remove = true
		}

		if similarity == 100 && parent != nil && parent.Blacklisted {
			result.Blacklist = true
		}
	}

	return result, nil
}

// liveStatus resolves a submission's current platform state, degrading to
// Removed when the lookup fails so a dead link never blocks enforcement.
func (s *Service) liveStatus(id string) *LiveStatus {
	live, err := s.platform.LiveStatus(id)
	if err != nil {
		s.logger.Warn("failed to resolve live status", "id", id, "error", err)
		return &LiveStatus{Status: StatusRemoved}
	}
	return live
}
