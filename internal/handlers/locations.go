package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/thennow/internal/capture"
	"github.com/lehigh-university-libraries/thennow/internal/models"
)

func (h *Handler) HandleLocations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		records, err := h.records.List(r.Context())
		if err != nil {
			h.writeFailure(w, err)
			return
		}
		if records == nil {
			records = []models.LocationRecord{}
		}
		h.writeJSON(w, records)
	case "POST":
		h.createLocation(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) createLocation(w http.ResponseWriter, r *http.Request) {
	latitude, err := strconv.ParseFloat(r.FormValue("latitude"), 64)
	if err != nil {
		h.writeError(w, "Invalid latitude: "+err.Error(), http.StatusBadRequest)
		return
	}
	longitude, err := strconv.ParseFloat(r.FormValue("longitude"), 64)
	if err != nil {
		h.writeError(w, "Invalid longitude: "+err.Error(), http.StatusBadRequest)
		return
	}

	photo, err := h.readPhoto(r)
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := h.capture.CreateLocation(r.Context(), capture.NewLocation{
		Title:     r.FormValue("title"),
		Notes:     r.FormValue("notes"),
		Latitude:  latitude,
		Longitude: longitude,
		Photo:     photo,
	})
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	h.writeJSON(w, record)
}

func (h *Handler) HandleLocationDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/locations/")
	id, action, _ := strings.Cut(path, "/")

	if id == "" {
		h.writeError(w, "Location id required", http.StatusBadRequest)
		return
	}

	if action == "capture" {
		h.handleCapture(w, r, id)
		return
	}
	if action != "" {
		h.writeError(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "GET":
		record, err := h.records.Get(r.Context(), id)
		if err != nil {
			h.writeFailure(w, err)
			return
		}
		h.writeJSON(w, record)
	case "PUT":
		h.updateLocation(w, r, id)
	case "DELETE":
		if err := h.records.Delete(r.Context(), id); err != nil {
			h.writeFailure(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) updateLocation(w http.ResponseWriter, r *http.Request, id string) {
	var request struct {
		Status *string `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	record, err := h.records.Get(r.Context(), id)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	if request.Status != nil {
		status, err := models.ParseStatusStrict(*request.Status)
		if err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		record.UpdateStatus(status, models.Now())
	}
	if request.Notes != nil {
		record.UpdateNotes(*request.Notes, models.Now())
	}

	if err := h.records.Update(r.Context(), record); err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, record)
}

func (h *Handler) handleCapture(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	photo, err := h.readPhoto(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := h.capture.AttachPhoto(r.Context(), id, photo)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, record)
}
