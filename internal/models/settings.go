package models

import (
	"fmt"
	"math"
	"time"
)

// ImageQuality selects the JPEG compression used for stored photos
type ImageQuality string

const (
	QualityHigh   ImageQuality = "high"
	QualityMedium ImageQuality = "medium"
	QualityLow    ImageQuality = "low"
)

// ParseImageQuality validates a user-supplied quality name
func ParseImageQuality(s string) (ImageQuality, error) {
	switch ImageQuality(s) {
	case QualityHigh, QualityMedium, QualityLow:
		return ImageQuality(s), nil
	default:
		return "", fmt.Errorf("invalid image quality %q (expected high, medium or low)", s)
	}
}

// CompressionRatio returns 1.0, 0.7 or 0.4. Unknown values behave as high.
func (q ImageQuality) CompressionRatio() float64 {
	switch q {
	case QualityMedium:
		return 0.7
	case QualityLow:
		return 0.4
	default:
		return 1.0
	}
}

// JPEGQuality maps the compression ratio onto image/jpeg's 1..100 scale
func (q ImageQuality) JPEGQuality() int {
	return int(math.Round(q.CompressionRatio() * 100))
}

// AppSettings is the single persisted settings value
type AppSettings struct {
	ImageQuality ImageQuality `yaml:"image_quality" json:"image_quality"`
	LastSyncDate *time.Time   `yaml:"last_sync_date,omitempty" json:"last_sync_date,omitempty"`
}

// DefaultSettings is used when nothing is persisted or the stored value is unreadable
func DefaultSettings() AppSettings {
	return AppSettings{ImageQuality: QualityHigh}
}

// MarkSynced records a successful sync pass
func (s *AppSettings) MarkSynced(now time.Time) {
	s.LastSyncDate = &now
}
