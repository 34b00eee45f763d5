package images

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/thennow/internal/models"
)

// BlobStore keeps image bytes addressed by caller-chosen names
type BlobStore interface {
	Save(name string, data []byte) (string, error)
	Load(path string) ([]byte, bool)
	Delete(path string) bool
}

// Store is a BlobStore backed by a directory on the local filesystem
type Store struct {
	dir string
}

// NewStore creates the directory if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory %s: %w: %w", dir, models.ErrStorage, err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve images directory %s: %w: %w", dir, models.ErrStorage, err)
	}

	return &Store{dir: abs}, nil
}

// Dir returns the absolute directory images are written to
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data under name and returns the absolute path.
// An existing file with the same name is overwritten.
func (s *Store) Save(name string, data []byte) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid image name %q: %w", name, models.ErrStorage)
	}

	path := filepath.Join(s.dir, name)
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write image %s: %w: %w", name, models.ErrStorage, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to move image %s: %w: %w", name, models.ErrStorage, err)
	}

	slog.Debug("Image saved", "name", name, "bytes", len(data))
	return path, nil
}

// Load reads the file at path. A missing or unreadable file is reported as absent.
func (s *Store) Load(path string) ([]byte, bool) {
	if path == "" {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read image", "path", path, "error", err)
		}
		return nil, false
	}

	return data, true
}

// Delete removes the file at path and reports whether it was removed
func (s *Store) Delete(path string) bool {
	if path == "" {
		return false
	}

	if err := os.Remove(path); err != nil {
		slog.Debug("Failed to delete image", "path", path, "error", err)
		return false
	}

	return true
}
