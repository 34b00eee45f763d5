package seed

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/thennow/internal/capture"
	"github.com/lehigh-university-libraries/thennow/internal/models"
)

// Creator adds a location from a historical photo
type Creator interface {
	CreateLocation(ctx context.Context, loc capture.NewLocation) (models.LocationRecord, error)
}

// Summary counts the outcome of an import
type Summary struct {
	Imported int
	Skipped  int
}

// Import creates every seed location. Relative image paths resolve against
// baseDir. Rows whose image cannot be read or whose record is rejected are skipped.
func Import(ctx context.Context, creator Creator, locations []Location, baseDir string) Summary {
	var summary Summary

	for i, loc := range locations {
		var photo []byte
		if loc.HistoricalImage != "" {
			path := loc.HistoricalImage
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				slog.Warn("Skipping seed row, image unreadable", "row", i+1, "title", loc.Title, "path", path, "err", err)
				summary.Skipped++
				continue
			}
			photo = data
		}

		_, err := creator.CreateLocation(ctx, capture.NewLocation{
			Title:     loc.Title,
			Notes:     loc.Notes,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Photo:     photo,
		})
		if err != nil {
			slog.Warn("Skipping seed row", "row", i+1, "title", loc.Title, "err", err)
			summary.Skipped++
			continue
		}
		summary.Imported++
	}

	slog.Info("Seed import complete", "imported", summary.Imported, "skipped", summary.Skipped)
	return summary
}
