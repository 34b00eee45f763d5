// Package remote is the server side of a sync pass: a document collection of
// location records and a blob store for their images.
package remote

import (
	"context"

	"github.com/lehigh-university-libraries/thennow/internal/models"
)

// Directory is the remote "locations" document collection
type Directory interface {
	// FetchAll returns every decodable document. Malformed documents are skipped.
	FetchAll(ctx context.Context) ([]models.LocationRecord, error)
	// CommitBatch sets one document per record as a single atomic batch
	CommitBatch(ctx context.Context, records []models.LocationRecord) error
}

// ImageStore is the remote blob storage for location images
type ImageStore interface {
	// Upload stores data under the deterministic key and returns a retrievable URL
	Upload(ctx context.Context, key string, data []byte) (string, error)
	// Download retrieves the bytes behind a URL returned by Upload
	Download(ctx context.Context, url string) ([]byte, error)
}

// HistoricalKey is the upload key of a record's historical photo
func HistoricalKey(id string) string {
	return id + "_historical"
}

// NewKey is the upload key of a record's captured photo
func NewKey(id string) string {
	return id + "_new"
}

// ObjectName maps an upload key to its object path in the bucket
func ObjectName(key string) string {
	return "images/" + key + ".jpg"
}
