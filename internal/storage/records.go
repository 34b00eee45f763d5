package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/lehigh-university-libraries/thennow/internal/images"
	"github.com/lehigh-university-libraries/thennow/internal/models"
)

// RecordStore is the local table of location records.
//
// Every mutation reads the whole table, changes the in-memory slice and writes
// the whole table back. Interleaved writers can lose each other's changes;
// callers issue one mutation at a time.
type RecordStore interface {
	List(ctx context.Context) ([]models.LocationRecord, error)
	Get(ctx context.Context, id string) (models.LocationRecord, error)
	Add(ctx context.Context, record models.LocationRecord) error
	Update(ctx context.Context, record models.LocationRecord) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, records []models.LocationRecord) error
}

type snapshotBackend interface {
	readAll(ctx context.Context) ([]models.LocationRecord, error)
	writeAll(ctx context.Context, records []models.LocationRecord) error
}

// Records implements RecordStore on top of a full-snapshot backend
type Records struct {
	backend snapshotBackend
	blobs   images.BlobStore
}

// NewSQLRecordStore stores records in the embedded database. blobs, when not
// nil, receives delete requests for the images owned by deleted records.
func NewSQLRecordStore(db *gorm.DB, blobs images.BlobStore) *Records {
	return &Records{backend: &sqlSnapshot{db: db}, blobs: blobs}
}

// NewMemoryRecordStore keeps records in process memory
func NewMemoryRecordStore(blobs images.BlobStore) *Records {
	return &Records{backend: &memorySnapshot{}, blobs: blobs}
}

// List returns every record in insertion order
func (s *Records) List(ctx context.Context) ([]models.LocationRecord, error) {
	return s.backend.readAll(ctx)
}

// Get returns the record with id or ErrNotFound
func (s *Records) Get(ctx context.Context, id string) (models.LocationRecord, error) {
	records, err := s.backend.readAll(ctx)
	if err != nil {
		return models.LocationRecord{}, err
	}

	if i := indexOf(records, id); i >= 0 {
		return records[i], nil
	}
	return models.LocationRecord{}, fmt.Errorf("location %s: %w", id, models.ErrNotFound)
}

// Add appends record. An id that is already stored is rejected.
func (s *Records) Add(ctx context.Context, record models.LocationRecord) error {
	records, err := s.backend.readAll(ctx)
	if err != nil {
		return err
	}

	if indexOf(records, record.ID) >= 0 {
		return fmt.Errorf("location %s: %w", record.ID, models.ErrDuplicateID)
	}

	return s.backend.writeAll(ctx, append(records, record))
}

// Update replaces the record with the same id. Unknown ids are ignored.
func (s *Records) Update(ctx context.Context, record models.LocationRecord) error {
	records, err := s.backend.readAll(ctx)
	if err != nil {
		return err
	}

	i := indexOf(records, record.ID)
	if i < 0 {
		slog.Debug("Update of unknown location ignored", "id", record.ID)
		return nil
	}

	records[i] = record
	return s.backend.writeAll(ctx, records)
}

// Delete removes the record and its images. Unknown ids are ignored.
func (s *Records) Delete(ctx context.Context, id string) error {
	records, err := s.backend.readAll(ctx)
	if err != nil {
		return err
	}

	i := indexOf(records, id)
	if i < 0 {
		return nil
	}

	if s.blobs != nil {
		for _, path := range []string{records[i].HistoricalImagePath, records[i].NewImagePath} {
			if path != "" && !s.blobs.Delete(path) {
				slog.Warn("Failed to delete location image", "id", id, "path", path)
			}
		}
	}

	records = append(records[:i], records[i+1:]...)
	return s.backend.writeAll(ctx, records)
}

// ReplaceAll overwrites the whole table with records
func (s *Records) ReplaceAll(ctx context.Context, records []models.LocationRecord) error {
	return s.backend.writeAll(ctx, records)
}

func indexOf(records []models.LocationRecord, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

// sqlSnapshot reads and rewrites the locations table
type sqlSnapshot struct {
	db *gorm.DB
}

func (s *sqlSnapshot) readAll(ctx context.Context) ([]models.LocationRecord, error) {
	var rows []locationRow
	if err := s.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read locations: %w: %w", models.ErrStorage, err)
	}

	records := make([]models.LocationRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

func (s *sqlSnapshot) writeAll(ctx context.Context, records []models.LocationRecord) error {
	rows := make([]locationRow, 0, len(records))
	for i, r := range records {
		rows = append(rows, rowFromRecord(r, i))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&locationRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 100).Error
	})
	if err != nil {
		return fmt.Errorf("failed to write locations: %w: %w", models.ErrStorage, err)
	}
	return nil
}

func rowFromRecord(r models.LocationRecord, position int) locationRow {
	return locationRow{
		ID:                  r.ID,
		Position:            position,
		Title:               r.Title,
		Notes:               r.Notes,
		Latitude:            r.Latitude,
		Longitude:           r.Longitude,
		Status:              string(r.Status),
		HistoricalImagePath: r.HistoricalImagePath,
		HistoricalImageURL:  r.HistoricalImageURL,
		NewImagePath:        r.NewImagePath,
		NewImageURL:         r.NewImageURL,
		CreatedAtNanos:      r.CreatedAt.UnixNano(),
		UpdatedAtNanos:      r.UpdatedAt.UnixNano(),
	}
}

func (row locationRow) toRecord() models.LocationRecord {
	return models.LocationRecord{
		ID:                  row.ID,
		Title:               row.Title,
		Notes:               row.Notes,
		Latitude:            row.Latitude,
		Longitude:           row.Longitude,
		Status:              models.ParseStatus(row.Status),
		HistoricalImagePath: row.HistoricalImagePath,
		HistoricalImageURL:  row.HistoricalImageURL,
		NewImagePath:        row.NewImagePath,
		NewImageURL:         row.NewImageURL,
		CreatedAt:           time.Unix(0, row.CreatedAtNanos).UTC(),
		UpdatedAt:           time.Unix(0, row.UpdatedAtNanos).UTC(),
	}
}
