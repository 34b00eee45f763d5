package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/lehigh-university-libraries/thennow/internal/capture"
	"github.com/lehigh-university-libraries/thennow/internal/models"
	"github.com/lehigh-university-libraries/thennow/internal/storage"
)

// Syncer runs sync passes
type Syncer interface {
	SyncToServer(ctx context.Context) error
	SyncFromServer(ctx context.Context) ([]models.LocationRecord, error)
}

// Capturer stores photos against locations
type Capturer interface {
	AttachPhoto(ctx context.Context, id string, photo []byte) (models.LocationRecord, error)
	CreateLocation(ctx context.Context, loc capture.NewLocation) (models.LocationRecord, error)
}

type Handler struct {
	records   storage.RecordStore
	settings  storage.SettingsStore
	capture   Capturer
	syncer    Syncer
	imagesDir string

	// syncing rejects a second pass while one is running
	syncing atomic.Bool
}

func New(records storage.RecordStore, settings storage.SettingsStore, capturer Capturer, syncer Syncer, imagesDir string) *Handler {
	return &Handler{
		records:   records,
		settings:  settings,
		capture:   capturer,
		syncer:    syncer,
		imagesDir: imagesDir,
	}
}

// Routes registers every endpoint on mux
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/locations", h.HandleLocations)
	mux.HandleFunc("/api/locations/", h.HandleLocationDetail)
	mux.HandleFunc("/api/sync/push", h.HandleSyncPush)
	mux.HandleFunc("/api/sync/pull", h.HandleSyncPull)
	mux.HandleFunc("/api/settings", h.HandleSettings)
	mux.HandleFunc("/images/", h.HandleImage)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// writeFailure maps the error taxonomy onto HTTP status codes
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateID):
		code = http.StatusConflict
	case errors.Is(err, models.ErrDecode), errors.Is(err, capture.ErrInvalidLocation):
		code = http.StatusBadRequest
	case errors.Is(err, models.ErrNetwork):
		code = http.StatusBadGateway
	}
	h.writeError(w, err.Error(), code)
}
