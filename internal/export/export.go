// Package export writes the local location table and its images to a
// portable directory, optionally packed as a zip archive.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lehigh-university-libraries/thennow/internal/images"
	"github.com/lehigh-university-libraries/thennow/internal/models"
	"github.com/lehigh-university-libraries/thennow/internal/storage"
)

const (
	// DirName is the export directory created under the output directory
	DirName = "thennow_export"
	// ArchiveName is the zip written next to the export directory
	ArchiveName = DirName + ".zip"

	exportQuality = 100
)

var csvHeader = []string{
	"id", "title", "latitude", "longitude", "status", "notes",
	"google_maps_link", "historical_image", "new_image",
}

// Options selects the artifacts to produce
type Options struct {
	OutputDir string
	Zip       bool
	Parquet   bool
}

// Result describes a finished export
type Result struct {
	Dir              string
	ArchivePath      string
	Records          int
	HistoricalImages int
	NewImages        int
}

// Exporter writes export artifacts from the local stores
type Exporter struct {
	records storage.RecordStore
	blobs   images.BlobStore
	now     func() time.Time
}

// NewExporter creates an exporter
func NewExporter(records storage.RecordStore, blobs images.BlobStore) *Exporter {
	return &Exporter{records: records, blobs: blobs, now: models.Now}
}

// Export writes {OutputDir}/thennow_export with locations.csv, re-encoded
// images and manifest.yaml. Any previous export directory is replaced.
func (e *Exporter) Export(ctx context.Context, opts Options) (*Result, error) {
	records, err := e.records.List(ctx)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(opts.OutputDir, DirName)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("failed to clear %s: %w", dir, err)
	}
	historicalDir := filepath.Join(dir, "images", "historical")
	newDir := filepath.Join(dir, "images", "new")
	for _, d := range []string{historicalDir, newDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", d, err)
		}
	}

	result := &Result{Dir: dir, Records: len(records)}
	rows := make([]Row, 0, len(records))

	for _, r := range records {
		row := newRow(r)

		name := models.HistoricalImageName(r.ID)
		if e.copyImage(r.HistoricalImagePath, filepath.Join(historicalDir, name)) {
			row.HistoricalImage = "images/historical/" + name
			result.HistoricalImages++
		}

		name = models.NewImageName(r.ID)
		if e.copyImage(r.NewImagePath, filepath.Join(newDir, name)) {
			row.NewImage = "images/new/" + name
			result.NewImages++
		}

		rows = append(rows, row)
	}

	if err := writeCSV(filepath.Join(dir, "locations.csv"), rows); err != nil {
		return nil, err
	}

	files := []string{"locations.csv"}
	if opts.Parquet {
		if err := writeParquet(filepath.Join(dir, "locations.parquet"), rows); err != nil {
			return nil, err
		}
		files = append(files, "locations.parquet")
	}

	if err := writeManifest(filepath.Join(dir, "manifest.yaml"), e.now(), records, result, files); err != nil {
		return nil, err
	}

	if opts.Zip {
		archive := filepath.Join(opts.OutputDir, ArchiveName)
		if err := zipDir(dir, archive); err != nil {
			return nil, err
		}
		result.ArchivePath = archive
	}

	slog.Info("Export complete",
		"dir", dir,
		"records", result.Records,
		"historical_images", result.HistoricalImages,
		"new_images", result.NewImages,
		"archive", result.ArchivePath)
	return result, nil
}

// copyImage re-encodes the blob at src into dst. Missing or undecodable
// images are skipped.
func (e *Exporter) copyImage(src, dst string) bool {
	if src == "" {
		return false
	}

	data, ok := e.blobs.Load(src)
	if !ok {
		slog.Warn("Image missing, exporting without it", "path", src)
		return false
	}

	encoded, err := images.Reencode(data, exportQuality)
	if err != nil {
		slog.Warn("Image unreadable, exporting without it", "path", src, "err", err)
		return false
	}

	if err := os.WriteFile(dst, encoded, 0644); err != nil {
		slog.Warn("Failed to write exported image", "path", dst, "err", err)
		return false
	}
	return true
}

func writeCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.ID,
			row.Title,
			strconv.FormatFloat(row.Latitude, 'f', -1, 64),
			strconv.FormatFloat(row.Longitude, 'f', -1, 64),
			row.Status,
			row.Notes,
			row.GoogleMapsLink,
			row.HistoricalImage,
			row.NewImage,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %s: %w", row.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return f.Close()
}
