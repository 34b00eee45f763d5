package export

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/thennow/internal/models"
)

// Manifest summarizes an export directory
type Manifest struct {
	ExportedAt       string         `yaml:"exported_at"`
	Records          int            `yaml:"records"`
	HistoricalImages int            `yaml:"historical_images"`
	NewImages        int            `yaml:"new_images"`
	Statuses         map[string]int `yaml:"statuses"`
	Files            []string       `yaml:"files"`
}

func writeManifest(path string, now time.Time, records []models.LocationRecord, result *Result, files []string) error {
	manifest := Manifest{
		ExportedAt:       now.UTC().Format(time.RFC3339),
		Records:          result.Records,
		HistoricalImages: result.HistoricalImages,
		NewImages:        result.NewImages,
		Statuses:         make(map[string]int),
		Files:            files,
	}
	for _, r := range records {
		manifest.Statuses[string(r.Status)]++
	}

	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest parses manifest.yaml from an export directory
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &manifest, nil
}
