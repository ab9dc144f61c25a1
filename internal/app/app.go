package app

import (
	"context"
	"fmt"
	"os"

	"repost-sentinel/internal/config"
	"repost-sentinel/internal/database"
	"repost-sentinel/internal/media"
	"repost-sentinel/internal/reddit"
	"repost-sentinel/internal/sentinel"

	"github.com/google/uuid"
)

// App is the application layer between the CLI and the sentinel service.
// It constructs all collaborators from config and manages the store and log
// file lifecycle on Close.
type App struct {
	cfg     *config.Config
	store   *database.SQLiteStore
	service *sentinel.Service
	loop    *sentinel.Loop
	logFile *os.File
}

// NewApp creates a fully wired App from the given config.
// The caller must call Close when done.
func NewApp(cfg *config.Config) (*App, error) {
	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	// In-memory databases are throwaway; file-backed ones must already be
	// migrated so a schema mismatch is caught before any polling starts.
	if cfg.Database.Type == "memory" {
		if err := store.MigrateUp(); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrating in-memory database: %w", err)
		}
	} else if err := store.CheckMigrations(); err != nil {
		store.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	runID := uuid.New().String()
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}

	client := reddit.NewClient(reddit.Credentials{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		Username:     cfg.Reddit.Username,
		Password:     cfg.Reddit.Password,
		UserAgent:    cfg.Reddit.UserAgent,
	}, cfg.Fetcher.MaxDownloadBytes)

	fetcher := media.NewFetcher(client, cfg.Fetcher.TempDir)
	service := sentinel.NewService(store, client, fetcher, log, sentinel.RealClock{})
	loop := sentinel.NewLoop(service, store, log)

	return &App{
		cfg:     cfg,
		store:   store,
		service: service,
		loop:    loop,
		logFile: logFile,
	}, nil
}

// Run polls until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.loop.Run(ctx)
}

// Communities returns the settings rows for every known community.
func (a *App) Communities() ([]*sentinel.CommunitySettings, error) {
	return a.store.CommunitySettings()
}

// Close releases the store and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
