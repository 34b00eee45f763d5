// Package capture stores photos taken on site and attaches them to locations.
//
// Steps are not transactional. A failure after the photo is saved leaves an
// orphaned blob behind.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/thennow/internal/images"
	"github.com/lehigh-university-libraries/thennow/internal/models"
	"github.com/lehigh-university-libraries/thennow/internal/storage"
)

// ErrInvalidLocation rejects a new location with no title or impossible coordinates
var ErrInvalidLocation = errors.New("invalid location")

// Pipeline persists photos and updates records
type Pipeline struct {
	records  storage.RecordStore
	settings storage.SettingsStore
	blobs    images.BlobStore
}

// NewPipeline creates a capture pipeline
func NewPipeline(records storage.RecordStore, settings storage.SettingsStore, blobs images.BlobStore) *Pipeline {
	return &Pipeline{
		records:  records,
		settings: settings,
		blobs:    blobs,
	}
}

// NewLocation describes a location created from a historical photo
type NewLocation struct {
	Title     string
	Notes     string
	Latitude  float64
	Longitude float64
	Photo     []byte
}

// AttachPhoto saves photo as the captured image of location id. The record
// becomes completed.
func (p *Pipeline) AttachPhoto(ctx context.Context, id string, photo []byte) (models.LocationRecord, error) {
	record, err := p.records.Get(ctx, id)
	if err != nil {
		return models.LocationRecord{}, err
	}

	path, err := p.savePhoto(ctx, models.NewImageName(id), photo)
	if err != nil {
		return models.LocationRecord{}, err
	}

	record.SetNewImage(path, "", models.Now())
	if err := p.records.Update(ctx, record); err != nil {
		return models.LocationRecord{}, err
	}

	slog.Info("Captured photo", "id", id, "title", record.Title, "path", path)
	return record, nil
}

// CreateLocation saves the historical photo and adds a notVisited record
func (p *Pipeline) CreateLocation(ctx context.Context, loc NewLocation) (models.LocationRecord, error) {
	if loc.Title == "" {
		return models.LocationRecord{}, fmt.Errorf("title is required: %w", ErrInvalidLocation)
	}
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return models.LocationRecord{}, fmt.Errorf("coordinates out of range %f,%f: %w", loc.Latitude, loc.Longitude, ErrInvalidLocation)
	}

	record := models.NewLocationRecord(loc.Title, loc.Latitude, loc.Longitude, "")
	record.Notes = loc.Notes

	if len(loc.Photo) > 0 {
		path, err := p.savePhoto(ctx, models.HistoricalImageName(record.ID), loc.Photo)
		if err != nil {
			return models.LocationRecord{}, err
		}
		record.HistoricalImagePath = path
	}

	if err := p.records.Add(ctx, record); err != nil {
		return models.LocationRecord{}, err
	}

	slog.Info("Created location", "id", record.ID, "title", record.Title)
	return record, nil
}

func (p *Pipeline) savePhoto(ctx context.Context, name string, photo []byte) (string, error) {
	quality := p.settings.Load(ctx).ImageQuality

	encoded, err := images.Reencode(photo, quality.JPEGQuality())
	if err != nil {
		return "", fmt.Errorf("failed to process photo: %w", err)
	}

	path, err := p.blobs.Save(name, encoded)
	if err != nil {
		return "", err
	}

	slog.Debug("Saved photo", "name", name, "quality", quality, "bytes", len(encoded))
	return path, nil
}
