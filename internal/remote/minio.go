package remote

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/lehigh-university-libraries/thennow/internal/images"
	"github.com/lehigh-university-libraries/thennow/internal/models"
)

// MinioConfig locates the bucket holding uploaded images
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL, when set, is the base of plain object URLs. Otherwise URLs are presigned.
	PublicURL string
	URLExpiry time.Duration
}

// MinioImageStore uploads images to an S3-compatible bucket
type MinioImageStore struct {
	client  *minio.Client
	cfg     MinioConfig
	fetcher *images.Fetcher
}

// NewMinioImageStore connects to the bucket, creating it when absent
func NewMinioImageStore(ctx context.Context, cfg MinioConfig, fetcher *images.Fetcher) (*MinioImageStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w: %w", cfg.Bucket, models.ErrNetwork, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w: %w", cfg.Bucket, models.ErrNetwork, err)
		}
		slog.Info("Created bucket", "bucket", cfg.Bucket)
	}

	return &MinioImageStore{client: client, cfg: cfg, fetcher: fetcher}, nil
}

// Upload stores data at images/{key}.jpg and returns its download URL
func (s *MinioImageStore) Upload(ctx context.Context, key string, data []byte) (string, error) {
	object := ObjectName(key)
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w: %w", object, models.ErrNetwork, err)
	}

	if s.cfg.PublicURL != "" {
		return PublicObjectURL(s.cfg.PublicURL, s.cfg.Bucket, object), nil
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.cfg.Bucket, object, s.cfg.URLExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w: %w", object, models.ErrNetwork, err)
	}
	return presigned.String(), nil
}

// Download fetches an uploaded image by URL
func (s *MinioImageStore) Download(ctx context.Context, imageURL string) ([]byte, error) {
	return s.fetcher.Fetch(ctx, imageURL)
}

// PublicObjectURL joins a public base URL, bucket and object path
func PublicObjectURL(base, bucket, object string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + object
}
