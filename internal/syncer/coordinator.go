// Package syncer moves location records and their images between the local
// stores and the remote directory. Each pass is all-or-nothing and runs once:
// there are no retries and nothing is resumed.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/thennow/internal/images"
	"github.com/lehigh-university-libraries/thennow/internal/models"
	"github.com/lehigh-university-libraries/thennow/internal/remote"
	"github.com/lehigh-university-libraries/thennow/internal/storage"
)

// Coordinator runs upload and download passes.
//
// It takes no lock: callers must not start overlapping passes.
type Coordinator struct {
	records     storage.RecordStore
	settings    storage.SettingsStore
	blobs       images.BlobStore
	directory   remote.Directory
	images      remote.ImageStore
	concurrency int
	now         func() time.Time
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithConcurrency caps simultaneous transfers per pass. Zero or less starts
// every transfer at once.
func WithConcurrency(n int) Option {
	return func(c *Coordinator) {
		c.concurrency = n
	}
}

// WithClock replaces the time source used for lastSyncDate
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// New creates a Coordinator
func New(records storage.RecordStore, settings storage.SettingsStore, blobs images.BlobStore, directory remote.Directory, imageStore remote.ImageStore, opts ...Option) *Coordinator {
	c := &Coordinator{
		records:   records,
		settings:  settings,
		blobs:     blobs,
		directory: directory,
		images:    imageStore,
		now:       models.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// upload is one pending image transfer to the remote store
type upload struct {
	index int
	key   string
	path  string
	isNew bool
	url   string
}

// SyncToServer uploads every image that has no remote URL yet, then writes
// all record metadata as one batch. If any upload fails the batch is not
// written. URLs obtained during a failed pass are discarded, so the next
// attempt uploads those images again.
//
// Cancelling ctx does not stop the pass: transfers and the commit run to
// completion and only ctx values are kept.
func (c *Coordinator) SyncToServer(ctx context.Context) (err error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	defer func() {
		passesTotal.WithLabelValues(directionUpload, outcome(err)).Inc()
		passDuration.WithLabelValues(directionUpload).Observe(time.Since(start).Seconds())
	}()

	records, err := c.records.List(ctx)
	if err != nil {
		return err
	}

	var tasks []*upload
	for i, r := range records {
		if r.HistoricalImageURL == "" && r.HistoricalImagePath != "" {
			tasks = append(tasks, &upload{index: i, key: remote.HistoricalKey(r.ID), path: r.HistoricalImagePath})
		}
		if r.NewImageURL == "" && r.NewImagePath != "" {
			tasks = append(tasks, &upload{index: i, key: remote.NewKey(r.ID), path: r.NewImagePath, isNew: true})
		}
	}

	g := c.group()
	for _, task := range tasks {
		g.Go(func() error {
			data, ok := c.blobs.Load(task.path)
			if !ok {
				slog.Warn("Local image missing, skipping upload", "key", task.key, "path", task.path)
				return nil
			}

			url, err := c.images.Upload(ctx, task.key, data)
			transfersTotal.WithLabelValues(directionUpload, outcome(err)).Inc()
			if err != nil {
				slog.Debug("Upload failed", "key", task.key, "err", err)
				return fmt.Errorf("upload %s: %w", task.key, err)
			}

			slog.Debug("Uploaded image", "key", task.key, "url", url)
			task.url = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("Upload pass failed", "err", err)
		return err
	}

	for _, task := range tasks {
		if task.url == "" {
			continue
		}
		if task.isNew {
			records[task.index].NewImageURL = task.url
		} else {
			records[task.index].HistoricalImageURL = task.url
		}
	}

	if err := c.directory.CommitBatch(ctx, records); err != nil {
		slog.Error("Upload pass failed", "err", err)
		return err
	}

	if err := c.markSynced(ctx); err != nil {
		return err
	}

	slog.Info("Upload pass complete", "records", len(records), "uploads", len(tasks))
	return nil
}

// download is one remote image to fetch and save locally
type download struct {
	index int
	url   string
	name  string
	isNew bool
	path  string
}

// SyncFromServer fetches every remote record and its images, then replaces
// the whole local record store with the result. Local-only records are lost.
// If any download fails nothing is written locally. Like SyncToServer, the
// pass ignores cancellation of ctx.
func (c *Coordinator) SyncFromServer(ctx context.Context) (result []models.LocationRecord, err error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	defer func() {
		passesTotal.WithLabelValues(directionDownload, outcome(err)).Inc()
		passDuration.WithLabelValues(directionDownload).Observe(time.Since(start).Seconds())
	}()

	records, err := c.directory.FetchAll(ctx)
	if err != nil {
		slog.Error("Download pass failed", "err", err)
		return nil, err
	}

	var tasks []*download
	for i, r := range records {
		if r.HistoricalImageURL != "" {
			tasks = append(tasks, &download{index: i, url: r.HistoricalImageURL, name: models.HistoricalImageName(r.ID)})
		}
		if r.NewImageURL != "" {
			tasks = append(tasks, &download{index: i, url: r.NewImageURL, name: models.NewImageName(r.ID), isNew: true})
		}
	}

	g := c.group()
	for _, task := range tasks {
		g.Go(func() error {
			data, err := c.images.Download(ctx, task.url)
			if err == nil {
				task.path, err = c.blobs.Save(task.name, data)
			}
			transfersTotal.WithLabelValues(directionDownload, outcome(err)).Inc()
			if err != nil {
				slog.Debug("Download failed", "name", task.name, "err", err)
				return fmt.Errorf("download %s: %w", task.name, err)
			}

			slog.Debug("Downloaded image", "name", task.name, "path", task.path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("Download pass failed", "err", err)
		return nil, err
	}

	for _, task := range tasks {
		if task.isNew {
			records[task.index].NewImagePath = task.path
		} else {
			records[task.index].HistoricalImagePath = task.path
		}
	}

	if records == nil {
		records = []models.LocationRecord{}
	}
	if err := c.records.ReplaceAll(ctx, records); err != nil {
		return nil, err
	}

	if err := c.markSynced(ctx); err != nil {
		return nil, err
	}

	slog.Info("Download pass complete", "records", len(records), "downloads", len(tasks))
	return records, nil
}

// group is a join barrier that keeps the first error. Failures do not cancel
// transfers already running, and the pass context is never cancelled.
func (c *Coordinator) group() *errgroup.Group {
	g := &errgroup.Group{}
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}
	return g
}

func (c *Coordinator) markSynced(ctx context.Context) error {
	settings := c.settings.Load(ctx)
	settings.MarkSynced(c.now())
	if err := c.settings.Save(ctx, settings); err != nil {
		return fmt.Errorf("failed to record sync time: %w", err)
	}
	return nil
}
