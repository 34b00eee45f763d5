// Package app builds the stores and services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"github.com/lehigh-university-libraries/thennow/internal/capture"
	"github.com/lehigh-university-libraries/thennow/internal/config"
	"github.com/lehigh-university-libraries/thennow/internal/export"
	"github.com/lehigh-university-libraries/thennow/internal/images"
	"github.com/lehigh-university-libraries/thennow/internal/models"
	"github.com/lehigh-university-libraries/thennow/internal/remote"
	"github.com/lehigh-university-libraries/thennow/internal/storage"
	"github.com/lehigh-university-libraries/thennow/internal/syncer"
)

// ErrRemoteNotConfigured is returned by sync passes when REMOTE_DATABASE_URL is unset
var ErrRemoteNotConfigured = errors.New("remote not configured: set REMOTE_DATABASE_URL")

// App holds the process-wide services
type App struct {
	Config   *config.Config
	Blobs    *images.Store
	Records  *storage.Records
	Settings *storage.Settings
	Capture  *capture.Pipeline
	Exporter *export.Exporter

	db *gorm.DB

	mu    sync.Mutex
	pool  *pgxpool.Pool
	coord *syncer.Coordinator
}

// New opens the local stores. The remote is connected on first sync.
func New(cfg *config.Config) (*App, error) {
	blobs, err := images.NewStore(cfg.ImagesDir)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	records := storage.NewSQLRecordStore(db, blobs)
	settings := storage.NewSQLSettingsStore(db)

	return &App{
		Config:   cfg,
		Blobs:    blobs,
		Records:  records,
		Settings: settings,
		Capture:  capture.NewPipeline(records, settings, blobs),
		Exporter: export.NewExporter(records, blobs),
		db:       db,
	}, nil
}

// SyncToServer runs an upload pass
func (a *App) SyncToServer(ctx context.Context) error {
	c, err := a.coordinator(ctx)
	if err != nil {
		return err
	}
	return c.SyncToServer(ctx)
}

// SyncFromServer runs a download pass
func (a *App) SyncFromServer(ctx context.Context) ([]models.LocationRecord, error) {
	c, err := a.coordinator(ctx)
	if err != nil {
		return nil, err
	}
	return c.SyncFromServer(ctx)
}

// coordinator connects the remote directory and image store once
func (a *App) coordinator(ctx context.Context) (*syncer.Coordinator, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.coord != nil {
		return a.coord, nil
	}
	if !a.Config.RemoteConfigured() {
		return nil, ErrRemoteNotConfigured
	}

	if err := remote.Migrate(a.Config.RemoteDatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to prepare remote schema: %w: %w", models.ErrNetwork, err)
	}

	pool, err := remote.Connect(ctx, a.Config.RemoteDatabaseURL)
	if err != nil {
		return nil, err
	}

	imageStore, err := remote.NewMinioImageStore(ctx, a.Config.Minio, images.NewFetcher(a.Config.HTTPTimeout))
	if err != nil {
		pool.Close()
		return nil, err
	}

	a.pool = pool
	a.coord = syncer.New(a.Records, a.Settings, a.Blobs,
		remote.NewPostgresDirectory(pool), imageStore,
		syncer.WithConcurrency(a.Config.SyncConcurrency))

	slog.Debug("Remote ready", "bucket", a.Config.Minio.Bucket, "concurrency", a.Config.SyncConcurrency)
	return a.coord, nil
}

// Close releases database handles
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pool != nil {
		a.pool.Close()
	}
	if err := storage.Close(a.db); err != nil {
		slog.Warn("Failed to close local database", "err", err)
	}
}
