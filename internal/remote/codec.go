package remote

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lehigh-university-libraries/thennow/internal/models"
)

// Document is the remote shape of a LocationRecord. Local paths never leave the device.
type Document struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Notes              string    `json:"notes"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	Status             string    `json:"status"`
	HistoricalImageURL string    `json:"historicalImageURL"`
	NewImageURL        *string   `json:"newImageURL"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// EncodeDocument serializes the metadata of r
func EncodeDocument(r models.LocationRecord) ([]byte, error) {
	doc := Document{
		ID:                 r.ID,
		Title:              r.Title,
		Notes:              r.Notes,
		Latitude:           r.Latitude,
		Longitude:          r.Longitude,
		Status:             string(r.Status),
		HistoricalImageURL: r.HistoricalImageURL,
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
	}
	if r.NewImageURL != "" {
		url := r.NewImageURL
		doc.NewImageURL = &url
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode location %s: %w", r.ID, err)
	}
	return data, nil
}

// DecodeDocument parses a remote document. Every field except newImageURL must
// be present with the right type, otherwise the error wraps ErrDecode.
func DecodeDocument(raw []byte) (models.LocationRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.LocationRecord{}, fmt.Errorf("%w: %w", models.ErrDecode, err)
	}

	var r models.LocationRecord
	var status string
	required := []struct {
		name string
		dest any
	}{
		{"id", &r.ID},
		{"title", &r.Title},
		{"notes", &r.Notes},
		{"latitude", &r.Latitude},
		{"longitude", &r.Longitude},
		{"status", &status},
		{"historicalImageURL", &r.HistoricalImageURL},
		{"createdAt", &r.CreatedAt},
		{"updatedAt", &r.UpdatedAt},
	}

	for _, f := range required {
		value, ok := fields[f.name]
		if !ok || string(value) == "null" {
			return models.LocationRecord{}, fmt.Errorf("missing field %q: %w", f.name, models.ErrDecode)
		}
		if err := json.Unmarshal(value, f.dest); err != nil {
			return models.LocationRecord{}, fmt.Errorf("field %q: %w: %w", f.name, models.ErrDecode, err)
		}
	}

	if r.ID == "" {
		return models.LocationRecord{}, fmt.Errorf("empty id: %w", models.ErrDecode)
	}

	if value, ok := fields["newImageURL"]; ok && string(value) != "null" {
		if err := json.Unmarshal(value, &r.NewImageURL); err != nil {
			return models.LocationRecord{}, fmt.Errorf("field %q: %w: %w", "newImageURL", models.ErrDecode, err)
		}
	}

	r.Status = models.ParseStatus(status)
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}
