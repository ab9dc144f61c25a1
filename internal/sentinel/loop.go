package sentinel

import (
	"context"
	"fmt"
	"time"
)

// Loop drives the single-threaded poll cycle: refresh community settings,
// import or scan each community, then check the inbox. Every failure is
// classified, slept on, and retried from the top; only context cancellation
// stops it.
type Loop struct {
	service *Service
	store   Store
	logger  Logger

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration)
}

// NewLoop creates the poll loop around an ingestion service.
func NewLoop(service *Service, store Store, logger Logger) *Loop {
	return &Loop{
		service: service,
		store:   store,
		logger:  logger,
		sleep:   sleepCtx,
	}
}

// NewLoopWithSleep is NewLoop with the backoff sleep replaced, for tests.
func NewLoopWithSleep(service *Service, store Store, logger Logger, sleep func(context.Context, time.Duration)) *Loop {
	l := NewLoop(service, store, logger)
	l.sleep = sleep
	return l
}

// Run polls until ctx is cancelled. It never returns a loop-level error:
// faults back off and retry.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			l.logger.Info("shutting down")
			return nil
		}

		l.logger.Info("starting poll cycle")
		if err := l.Cycle(); err != nil {
			backoff := Backoff(err)
			l.logger.Warn("poll cycle failed", "error", err, "backoff", backoff)
			l.sleep(ctx, backoff)
		}
	}
}

// Cycle runs one pass over every known community plus the inbox.
func (l *Loop) Cycle() error {
	settings, err := l.store.CommunitySettings()
	if err != nil {
		return fmt.Errorf("loading community settings: %w", err)
	}

	for _, community := range settings {
		if !community.Enabled {
			continue
		}
		if !community.Imported {
			if err := l.service.IngestFull(community); err != nil {
				return err
			}
			continue
		}
		if err := l.service.IngestNew(community); err != nil {
			return err
		}
	}

	l.service.CheckMail()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
