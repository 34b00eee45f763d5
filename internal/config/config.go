// Package config reads thennow settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/thennow/internal/remote"
)

// Config holds process configuration
type Config struct {
	DataDir   string
	DBPath    string
	ImagesDir string

	// RemoteDatabaseURL is empty when no remote is configured
	RemoteDatabaseURL string
	Minio             remote.MinioConfig

	SyncConcurrency int
	HTTPTimeout     time.Duration
	LogLevel        slog.Level
}

// Load reads and validates the environment
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	home, _ := os.UserHomeDir()
	cfg.DataDir = getEnvDefault("THENNOW_DATA_DIR", filepath.Join(home, ".thennow"))
	cfg.DBPath = getEnvDefault("THENNOW_DB_PATH", filepath.Join(cfg.DataDir, "thennow.db"))
	cfg.ImagesDir = getEnvDefault("THENNOW_IMAGES_DIR", filepath.Join(cfg.DataDir, "images"))

	cfg.RemoteDatabaseURL = os.Getenv("REMOTE_DATABASE_URL")

	cfg.Minio = remote.MinioConfig{
		Endpoint:  getEnvDefault("MINIO_HOST", "localhost:9000"),
		AccessKey: getEnvDefault("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey: getEnvDefault("MINIO_SECRET_KEY", "minioadmin"),
		Bucket:    getEnvDefault("MINIO_BUCKET", "thennow"),
		PublicURL: os.Getenv("MINIO_PUBLIC_URL"),
	}
	if cfg.Minio.UseSSL, err = getEnvBool("MINIO_USE_SSL", false); err != nil {
		return nil, fmt.Errorf("MINIO_USE_SSL: %w", err)
	}
	if cfg.Minio.URLExpiry, err = getEnvDuration("MINIO_URL_EXPIRY", 7*24*time.Hour); err != nil {
		return nil, fmt.Errorf("MINIO_URL_EXPIRY: %w", err)
	}
	if cfg.Minio.URLExpiry <= 0 || cfg.Minio.URLExpiry > 7*24*time.Hour {
		return nil, fmt.Errorf("MINIO_URL_EXPIRY: must be between 1s and 168h, got %s", cfg.Minio.URLExpiry)
	}

	if cfg.SyncConcurrency, err = getEnvInt("SYNC_CONCURRENCY", 0); err != nil {
		return nil, fmt.Errorf("SYNC_CONCURRENCY: %w", err)
	}
	if cfg.SyncConcurrency < 0 {
		return nil, fmt.Errorf("SYNC_CONCURRENCY: must not be negative, got %d", cfg.SyncConcurrency)
	}

	if cfg.HTTPTimeout, err = getEnvDuration("HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, fmt.Errorf("HTTP_TIMEOUT: %w", err)
	}

	if cfg.LogLevel, err = ParseLogLevel(getEnvDefault("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// RemoteConfigured reports whether sync has a remote to talk to
func (c *Config) RemoteConfigured() bool {
	return c.RemoteDatabaseURL != ""
}

// ParseLogLevel converts debug, info, warn or error to a slog.Level
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid level %q, expected debug, info, warn or error", level)
	}
}

func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", val)
	}
	return n, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", val)
	}
	return b, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (use Go format: 30s, 1h, 15m)", val)
	}
	return d, nil
}
