package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lehigh-university-libraries/thennow/internal/models"
)

// locationRow is the embedded-database shape of a LocationRecord.
// Timestamps are kept as Unix nanoseconds so they survive the round trip exactly.
type locationRow struct {
	ID                  string `gorm:"primaryKey"`
	Position            int    `gorm:"not null;index"`
	Title               string `gorm:"not null"`
	Notes               string `gorm:"not null"`
	Latitude            float64
	Longitude           float64
	Status              string `gorm:"not null"`
	HistoricalImagePath string `gorm:"not null"`
	HistoricalImageURL  string `gorm:"column:historical_image_url;not null"`
	NewImagePath        string
	NewImageURL         string `gorm:"column:new_image_url"`
	CreatedAtNanos      int64  `gorm:"column:created_at_ns"`
	UpdatedAtNanos      int64  `gorm:"column:updated_at_ns"`
}

func (locationRow) TableName() string {
	return "locations"
}

// kvEntry is one key-value slot
type kvEntry struct {
	Key   string `gorm:"primaryKey"`
	Value []byte
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// Open opens (creating if needed) the embedded SQLite database at path
func Open(path string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w: %w", models.ErrStorage, err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w: %w", path, models.ErrStorage, err)
	}

	if err := db.AutoMigrate(&locationRow{}, &kvEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w: %w", models.ErrStorage, err)
	}

	slog.Debug("Local database ready", "path", path)
	return db, nil
}

// Close releases the database handle
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
