package sentinel

import (
	"fmt"
	"strings"
)

const (
	inviteSubjectPrefix  = "invitation to moderate"
	modMailSubjectPrefix = "moderator message from"
	removedAsModMarker   = "You have been removed as a moderator from "
	blacklistSubject     = "blacklist"
)

// submissionIDLength is the length of a platform submission id.
const submissionIDLength = 6

// CheckMail drains the unread inbox: accepts moderator invites, disables
// communities the bot was removed from, and applies moderator blacklist
// requests. Failures are logged and never abort the poll loop.
func (s *Service) CheckMail() {
	s.logger.Info("checking mail")

	messages, err := s.platform.UnreadMessages()
	if err != nil {
		s.logger.Error("failed to read inbox", "error", err)
		return
	}

	for _, msg := range messages {
		if err := s.handleMessage(msg); err != nil {
			s.logger.Error("failed to handle message", "id", msg.ID, "error", err)
		}
	}
}

func (s *Service) handleMessage(msg *Message) error {
	if err := s.platform.MarkRead(msg.ID); err != nil {
		s.logger.Warn("failed to mark message read", "id", msg.ID, "error", err)
	}

	if !msg.IsMessage {
		return nil
	}

	subject := strings.ToLower(strings.TrimSpace(msg.Subject))
	switch {
	case strings.HasPrefix(subject, modMailSubjectPrefix):
		return nil
	case strings.HasPrefix(subject, inviteSubjectPrefix):
		return s.acceptModInvite(msg)
	case strings.Contains(msg.Body, removedAsModMarker):
		return s.dropModStatus(msg)
	case subject == blacklistSubject:
		return s.applyBlacklistRequest(msg)
	}
	return nil
}

// acceptModInvite accepts a moderator invitation and enables the community,
// inserting a settings row with defaults when the community is new.
func (s *Service) acceptModInvite(msg *Message) error {
	if msg.Community == "" {
		return fmt.Errorf("moderator invite without community: %s", msg.ID)
	}
	if err := s.platform.AcceptModeratorInvite(msg.Community); err != nil {
		return fmt.Errorf("accepting moderator invite for %s: %w", msg.Community, err)
	}
	if err := s.store.UpsertCommunitySettings(msg.Community, true); err != nil {
		return fmt.Errorf("enabling community %s: %w", msg.Community, err)
	}
	s.logger.Info("accepted moderator invite", "community", msg.Community)
	return nil
}

// dropModStatus disables a community the bot no longer moderates.
func (s *Service) dropModStatus(msg *Message) error {
	if msg.Community == "" {
		return fmt.Errorf("moderator removal without community: %s", msg.ID)
	}
	if err := s.store.UpsertCommunitySettings(msg.Community, false); err != nil {
		return fmt.Errorf("disabling community %s: %w", msg.Community, err)
	}
	s.logger.Info("removed as moderator", "community", msg.Community)
	return nil
}

// applyBlacklistRequest handles a "blacklist" message from a community
// moderator: the referenced submission is indexed without enforcement and
// then marked with the sticky blacklist flag, so its exact duplicates are
// removed on sight.
func (s *Service) applyBlacklistRequest(msg *Message) error {
	id, ok := extractSubmissionID(msg.Body)
	if !ok {
		s.logger.Warn("blacklist request without submission id", "id", msg.ID)
		return nil
	}

	sub, err := s.platform.FetchSubmission(id)
	if err != nil {
		return fmt.Errorf("fetching blacklist target %s: %w", id, err)
	}

	settings, err := s.settingsFor(sub.Community)
	if err != nil {
		return err
	}
	if settings == nil {
		s.logger.Warn("blacklist request for unknown community", "community", sub.Community)
		return nil
	}

	moderators, err := s.platform.Moderators(sub.Community)
	if err != nil {
		return fmt.Errorf("listing moderators of %s: %w", sub.Community, err)
	}
	if !contains(moderators, msg.Author) {
		s.logger.Warn("blacklist request from non-moderator", "author", msg.Author, "community", sub.Community)
		return nil
	}

	if err := s.IndexSubmission(sub, settings, false); err != nil {
		return fmt.Errorf("indexing blacklist target %s: %w", id, err)
	}
	if err := s.store.SetSubmissionBlacklist(id); err != nil {
		return fmt.Errorf("blacklisting %s: %w", id, err)
	}

	s.logger.Info("blacklisted submission", "id", id, "community", sub.Community)
	return nil
}

func (s *Service) settingsFor(community string) (*CommunitySettings, error) {
	all, err := s.store.CommunitySettings()
	if err != nil {
		return nil, fmt.Errorf("loading community settings: %w", err)
	}
	for _, settings := range all {
		if settings.Community == community {
			return settings, nil
		}
	}
	return nil, nil
}

// extractSubmissionID pulls a submission id out of a blacklist request body,
// accepting a bare id, a full /comments/ permalink, or a redd.it short link.
func extractSubmissionID(body string) (string, bool) {
	body = strings.TrimSpace(body)

	if len(body) == submissionIDLength {
		return body, true
	}
	for _, marker := range []string{"/comments/", "redd.it/"} {
		if idx := strings.Index(body, marker); idx >= 0 {
			rest := body[idx+len(marker):]
			if len(rest) >= submissionIDLength {
				return rest[:submissionIDLength], true
			}
		}
	}
	return "", false
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
