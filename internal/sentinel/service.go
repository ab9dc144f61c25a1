package sentinel

import (
	"errors"
	"fmt"
	"strings"
)

// minMatchDimension is the minimum width and height (exclusive) an image
// must have before it is fingerprinted and matched. Smaller images are
// stored as submission data only.
const minMatchDimension = 200

// newListingLimit is how many of the newest submissions each poll cycle scans.
const newListingLimit = 200

// Service coordinates ingestion: fetch image bytes, decode, fingerprint,
// match against the community corpus, enforce the resulting decision, and
// persist the records. It performs no concurrent work and is safe to
// re-invoke sequentially.
type Service struct {
	store    Store
	platform Platform
	fetcher  Fetcher
	logger   Logger
	clock    Clock
}

// NewService creates a Service with the provided collaborators.
func NewService(store Store, platform Platform, fetcher Fetcher, logger Logger, clock Clock) *Service {
	return &Service{
		store:    store,
		platform: platform,
		fetcher:  fetcher,
		logger:   logger,
		clock:    clock,
	}
}

// IngestNew scans the newest submissions of a community with enforcement on.
func (s *Service) IngestNew(settings *CommunitySettings) error {
	s.logger.Info("scanning new submissions", "community", settings.Community)
	start := s.clock.Now()

	subs, err := s.platform.NewSubmissions(settings.Community, newListingLimit)
	if err != nil {
		return fmt.Errorf("listing new submissions for %s: %w", settings.Community, err)
	}

	for _, sub := range subs {
		s.indexOne(sub, settings, true)
	}

	s.logger.Debug("scan complete", "community", settings.Community,
		"submissions", len(subs), "elapsed", s.clock.Now().Sub(start))
	return nil
}

// IngestFull imports a community's history from the top-scored listings
// (all time, past year, past month) with enforcement off, then marks the
// community imported.
func (s *Service) IngestFull(settings *CommunitySettings) error {
	s.logger.Info("importing full history", "community", settings.Community)
	start := s.clock.Now()

	for _, period := range []TopPeriod{TopAll, TopYear, TopMonth} {
		subs, err := s.platform.TopSubmissions(settings.Community, period)
		if err != nil {
			return fmt.Errorf("listing top/%s for %s: %w", period, settings.Community, err)
		}
		for _, sub := range subs {
			s.indexOne(sub, settings, false)
		}
	}

	if err := s.store.SetCommunityImported(settings.Community); err != nil {
		return fmt.Errorf("marking %s imported: %w", settings.Community, err)
	}

	s.logger.Info("full history imported", "community", settings.Community,
		"elapsed", s.clock.Now().Sub(start))
	return nil
}

// indexOne wraps IndexSubmission so one bad submission never aborts a batch.
func (s *Service) indexOne(sub *Submission, settings *CommunitySettings, enforce bool) {
	if err := s.IndexSubmission(sub, settings, enforce); err != nil {
		s.logger.Error("failed to index submission", "id", sub.ID, "error", err)
	}
}

// IndexSubmission processes a single submission: records it, and when its
// URL points at an image large enough to matter, fingerprints the image,
// optionally enforces the moderation decision, and records the media row.
//
// Re-processing an already stored submission id is a no-op, so ingestion is
// safe to re-enter after a crash.
func (s *Service) IndexSubmission(sub *Submission, settings *CommunitySettings, enforce bool) error {
	if sub.SelfPost {
		s.logger.Debug("skipping self post", "id", sub.ID)
		return nil
	}

	existing, err := s.store.FindSubmission(sub.ID)
	if err != nil {
		return fmt.Errorf("checking for existing submission: %w", err)
	}
	if existing != nil {
		s.logger.Debug("submission already indexed", "id", sub.ID)
		return nil
	}

	s.logger.Info("indexing submission", "id", sub.ID, "community", sub.Community)

	processed := false
	if url, ok := imageURL(sub.URL); ok {
		processed = s.processImage(sub, settings, url, enforce)
	}

	record := *sub
	record.Processed = processed
	record.Deleted = sub.Author == "[deleted]"

	if err := s.store.InsertSubmission(&record); err != nil {
		if errors.Is(err, ErrDuplicateSubmission) {
			return nil
		}
		return fmt.Errorf("recording submission: %w", err)
	}
	return nil
}

// processImage downloads, gates and fingerprints the submission's image, runs
// enforcement when requested, and stores the media row. It reports whether a
// media row was recorded; every failure degrades to "store the submission
// unprocessed".
func (s *Service) processImage(sub *Submission, settings *CommunitySettings, url string, enforce bool) bool {
	img, err := s.fetcher.Fetch(url)
	if err != nil {
		if errors.Is(err, ErrImageTooLarge) {
			s.logger.Warn("image too large to fingerprint", "id", sub.ID)
		} else {
			s.logger.Warn("failed to fetch image", "id", sub.ID, "error", err)
		}
		return false
	}

	if img.Width <= minMatchDimension || img.Height <= minMatchDimension {
		s.logger.Debug("image below matching size", "id", sub.ID, "width", img.Width, "height", img.Height)
		return false
	}

	media := &MediaRecord{
		Fingerprint:  DifferenceHash(img.Image),
		SubmissionID: sub.ID,
		Community:    sub.Community,
		FrameNumber:  1,
		FrameCount:   1,
		Width:        img.Width,
		Height:       img.Height,
		Pixels:       img.Width * img.Height,
		FileSize:     img.FileSize,
	}

	if enforce {
		if err := s.Enforce(sub, settings, media); err != nil {
			s.logger.Error("enforcement failed", "id", sub.ID, "error", err)
		}
	}

	if err := s.store.InsertMedia(media); err != nil {
		s.logger.Error("failed to record media", "id", sub.ID, "error", err)
		return false
	}
	return true
}

// imageURL reports whether a submission URL points at a direct image, and
// normalizes it. Mobile imgur links are rewritten to the image host.
func imageURL(raw string) (string, bool) {
	url := strings.ToLower(strings.ReplaceAll(raw, "m.imgur.com", "i.imgur.com"))

	for _, suffix := range []string{".jpg", ".jpg?1", ".jpeg", ".png", "png?1"} {
		if strings.HasSuffix(url, suffix) {
			return url, true
		}
	}
	for _, host := range []string{"reddituploads.com", "redditmedia.com", "reutersmedia.net", "500px.org"} {
		if strings.Contains(url, host) {
			return url, true
		}
	}
	return "", false
}
