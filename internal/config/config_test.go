package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func clearEnvs(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"THENNOW_DATA_DIR", "THENNOW_DB_PATH", "THENNOW_IMAGES_DIR", "REMOTE_DATABASE_URL",
		"MINIO_HOST", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_USE_SSL",
		"MINIO_PUBLIC_URL", "MINIO_URL_EXPIRY", "SYNC_CONCURRENCY", "HTTP_TIMEOUT", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnvs(t)
	setEnvs(t, map[string]string{"THENNOW_DATA_DIR": "/var/lib/thennow"})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.DBPath != filepath.Join("/var/lib/thennow", "thennow.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.ImagesDir != filepath.Join("/var/lib/thennow", "images") {
		t.Errorf("ImagesDir = %q", cfg.ImagesDir)
	}
	if cfg.RemoteConfigured() {
		t.Error("RemoteConfigured() = true without REMOTE_DATABASE_URL")
	}
	if cfg.Minio.Endpoint != "localhost:9000" || cfg.Minio.Bucket != "thennow" || cfg.Minio.UseSSL {
		t.Errorf("unexpected MinIO defaults: %+v", cfg.Minio)
	}
	if cfg.Minio.URLExpiry != 168*time.Hour {
		t.Errorf("URLExpiry = %s, expected 168h", cfg.Minio.URLExpiry)
	}
	if cfg.SyncConcurrency != 0 {
		t.Errorf("SyncConcurrency = %d, expected 0", cfg.SyncConcurrency)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %s, expected 30s", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, expected info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnvs(t)
	setEnvs(t, map[string]string{
		"THENNOW_DATA_DIR":    "/data",
		"THENNOW_DB_PATH":     "/db/local.db",
		"REMOTE_DATABASE_URL": "postgres://u:p@db/thennow",
		"MINIO_USE_SSL":       "true",
		"MINIO_PUBLIC_URL":    "https://cdn.example.org",
		"MINIO_URL_EXPIRY":    "1h",
		"SYNC_CONCURRENCY":    "4",
		"HTTP_TIMEOUT":        "5s",
		"LOG_LEVEL":           "DEBUG",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.DBPath != "/db/local.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if !cfg.RemoteConfigured() {
		t.Error("RemoteConfigured() = false")
	}
	if !cfg.Minio.UseSSL || cfg.Minio.PublicURL != "https://cdn.example.org" || cfg.Minio.URLExpiry != time.Hour {
		t.Errorf("unexpected MinIO config: %+v", cfg.Minio)
	}
	if cfg.SyncConcurrency != 4 {
		t.Errorf("SyncConcurrency = %d, expected 4", cfg.SyncConcurrency)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, expected debug", cfg.LogLevel)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		envs map[string]string
	}{
		{"negative concurrency", map[string]string{"SYNC_CONCURRENCY": "-1"}},
		{"non-numeric concurrency", map[string]string{"SYNC_CONCURRENCY": "many"}},
		{"bad timeout", map[string]string{"HTTP_TIMEOUT": "soon"}},
		{"bad ssl flag", map[string]string{"MINIO_USE_SSL": "maybe"}},
		{"expiry too long", map[string]string{"MINIO_URL_EXPIRY": "200h"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvs(t)
			setEnvs(t, tt.envs)
			if _, err := Load(); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}
