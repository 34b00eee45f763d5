package export

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/lehigh-university-libraries/thennow/internal/models"
)

// Row is one exported location
type Row struct {
	ID              string  `parquet:"id"`
	Title           string  `parquet:"title"`
	Latitude        float64 `parquet:"latitude"`
	Longitude       float64 `parquet:"longitude"`
	Status          string  `parquet:"status"`
	Notes           string  `parquet:"notes"`
	GoogleMapsLink  string  `parquet:"google_maps_link"`
	HistoricalImage string  `parquet:"historical_image"`
	NewImage        string  `parquet:"new_image"`
	CreatedAt       int64   `parquet:"created_at_ns"`
	UpdatedAt       int64   `parquet:"updated_at_ns"`
}

func newRow(r models.LocationRecord) Row {
	return Row{
		ID:             r.ID,
		Title:          r.Title,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		Status:         string(r.Status),
		Notes:          r.Notes,
		GoogleMapsLink: r.GoogleMapsURL(),
		CreatedAt:      r.CreatedAt.UnixNano(),
		UpdatedAt:      r.UpdatedAt.UnixNano(),
	}
}

func writeParquet(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := parquet.NewGenericWriter[Row](f)
	if _, err := w.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return f.Close()
}

// ReadParquet loads rows written by an export
func ReadParquet(path string) ([]Row, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}
