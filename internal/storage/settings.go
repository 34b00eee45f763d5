package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lehigh-university-libraries/thennow/internal/models"
)

// SettingsKey is the key-value slot holding the serialized AppSettings
const SettingsKey = "appSettings"

// SettingsStore persists the single AppSettings value
type SettingsStore interface {
	Load(ctx context.Context) models.AppSettings
	Save(ctx context.Context, settings models.AppSettings) error
}

type kvBackend interface {
	get(ctx context.Context, key string) ([]byte, bool, error)
	put(ctx context.Context, key string, value []byte) error
}

// Settings implements SettingsStore as YAML in a key-value slot
type Settings struct {
	kv kvBackend
}

// NewSQLSettingsStore stores settings in the embedded database
func NewSQLSettingsStore(db *gorm.DB) *Settings {
	return &Settings{kv: &sqlKV{db: db}}
}

// NewMemorySettingsStore keeps settings in process memory
func NewMemorySettingsStore() *Settings {
	return &Settings{kv: newMemoryKV()}
}

// Load never fails: a missing, unreadable or invalid value yields DefaultSettings.
func (s *Settings) Load(ctx context.Context) models.AppSettings {
	raw, ok, err := s.kv.get(ctx, SettingsKey)
	if err != nil {
		slog.Debug("Failed to read settings, using defaults", "err", err)
		return models.DefaultSettings()
	}
	if !ok {
		return models.DefaultSettings()
	}

	settings, err := decodeSettings(raw)
	if err != nil {
		slog.Debug("Failed to decode settings, using defaults", "err", err)
		return models.DefaultSettings()
	}
	return settings
}

// Save replaces the persisted settings
func (s *Settings) Save(ctx context.Context, settings models.AppSettings) error {
	raw, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w: %w", models.ErrStorage, err)
	}
	return s.kv.put(ctx, SettingsKey, raw)
}

func decodeSettings(raw []byte) (models.AppSettings, error) {
	var settings models.AppSettings
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return models.AppSettings{}, fmt.Errorf("%w: %w", models.ErrDecode, err)
	}
	if _, err := models.ParseImageQuality(string(settings.ImageQuality)); err != nil {
		return models.AppSettings{}, fmt.Errorf("%w: %w", models.ErrDecode, err)
	}
	if settings.LastSyncDate != nil {
		t := settings.LastSyncDate.UTC()
		settings.LastSyncDate = &t
	}
	return settings, nil
}

// sqlKV stores slots in the kv_entries table
type sqlKV struct {
	db *gorm.DB
}

func (s *sqlKV) get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry kvEntry
	err := s.db.WithContext(ctx).Where(&kvEntry{Key: key}).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w: %w", key, models.ErrStorage, err)
	}
	return entry.Value, true, nil
}

func (s *sqlKV) put(ctx context.Context, key string, value []byte) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&kvEntry{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w: %w", key, models.ErrStorage, err)
	}
	return nil
}
