package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/thennow/internal/models"
)

// maxImageSize caps a single downloaded photo
const maxImageSize = 50 * 1024 * 1024

// Fetcher retrieves images by URL
type Fetcher struct {
	HTTPClient *http.Client
}

// NewFetcher creates a new image fetcher. A zero timeout means no client timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads the image at url
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image URL %q: %w: %w", url, models.ErrNetwork, err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w: %w", models.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image URL returned status %d: %w", resp.StatusCode, models.ErrNetwork)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w: %w", models.ErrNetwork, err)
	}

	if len(imageData) > maxImageSize {
		return nil, fmt.Errorf("image too large (max %d bytes): %w", maxImageSize, models.ErrNetwork)
	}

	if len(imageData) == 0 {
		return nil, fmt.Errorf("image URL returned an empty body: %w", models.ErrNetwork)
	}

	slog.Debug("Fetched image", "url", url, "bytes", len(imageData))
	return imageData, nil
}
