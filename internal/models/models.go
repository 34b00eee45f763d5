package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// LocationStatus tracks whether a location has been photographed
type LocationStatus string

const (
	StatusNotVisited   LocationStatus = "notVisited"
	StatusCompleted    LocationStatus = "completed"
	StatusInaccessible LocationStatus = "inaccessible"
)

// ParseStatus converts a wire string to a LocationStatus.
// Unknown values fall back to StatusNotVisited.
func ParseStatus(s string) LocationStatus {
	switch LocationStatus(s) {
	case StatusCompleted:
		return StatusCompleted
	case StatusInaccessible:
		return StatusInaccessible
	default:
		return StatusNotVisited
	}
}

// ParseStatusStrict is ParseStatus for user input, where a typo should not
// silently reset a location to notVisited.
func ParseStatusStrict(s string) (LocationStatus, error) {
	switch LocationStatus(s) {
	case StatusNotVisited, StatusCompleted, StatusInaccessible:
		return LocationStatus(s), nil
	default:
		return "", fmt.Errorf("invalid status %q (expected notVisited, completed or inaccessible)", s)
	}
}

// LocationRecord is a place with a historical photo and, once visited,
// a present-day photo taken from the same spot
type LocationRecord struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Notes               string         `json:"notes"`
	Latitude            float64        `json:"latitude"`
	Longitude           float64        `json:"longitude"`
	Status              LocationStatus `json:"status"`
	HistoricalImagePath string         `json:"historical_image_path"`
	HistoricalImageURL  string         `json:"historical_image_url"`
	NewImagePath        string         `json:"new_image_path,omitempty"`
	NewImageURL         string         `json:"new_image_url,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// NewLocationRecord creates a notVisited record with a fresh id
func NewLocationRecord(title string, latitude, longitude float64, historicalImagePath string) LocationRecord {
	now := Now()
	return LocationRecord{
		ID:                  uuid.NewString(),
		Title:               title,
		Latitude:            latitude,
		Longitude:           longitude,
		Status:              StatusNotVisited,
		HistoricalImagePath: historicalImagePath,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Now returns the current time in UTC without a monotonic reading, so
// timestamps compare equal after a round trip through storage.
func Now() time.Time {
	return time.Now().UTC()
}

// UpdateStatus sets the status and refreshes UpdatedAt
func (r *LocationRecord) UpdateStatus(status LocationStatus, now time.Time) {
	r.Status = status
	r.touch(now)
}

// UpdateNotes replaces the notes and refreshes UpdatedAt
func (r *LocationRecord) UpdateNotes(notes string, now time.Time) {
	r.Notes = notes
	r.touch(now)
}

// SetNewImage attaches a captured photo. Capturing a photo always marks the
// location completed. An empty url leaves NewImageURL untouched.
func (r *LocationRecord) SetNewImage(path, url string, now time.Time) {
	r.NewImagePath = path
	if url != "" {
		r.NewImageURL = url
	}
	r.Status = StatusCompleted
	r.touch(now)
}

// touch keeps UpdatedAt strictly increasing even when the clock has not
// moved since the previous mutation.
func (r *LocationRecord) touch(now time.Time) {
	if !now.After(r.UpdatedAt) {
		now = r.UpdatedAt.Add(time.Nanosecond)
	}
	r.UpdatedAt = now
}

// HasHistoricalImage reports whether a local historical photo is set
func (r LocationRecord) HasHistoricalImage() bool {
	return r.HistoricalImagePath != ""
}

// HasComparisonPair reports whether a captured photo exists locally or remotely
func (r LocationRecord) HasComparisonPair() bool {
	return r.NewImagePath != "" || r.NewImageURL != ""
}

// GoogleMapsURL links to the record's coordinates
func (r LocationRecord) GoogleMapsURL() string {
	return "https://www.google.com/maps/search/?api=1&query=" +
		strconv.FormatFloat(r.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(r.Longitude, 'f', -1, 64)
}

// HistoricalImageName is the deterministic blob name of the historical photo
func HistoricalImageName(id string) string {
	return id + "_historical.jpg"
}

// NewImageName is the deterministic blob name of the captured photo
func NewImageName(id string) string {
	return id + "_new.jpg"
}
