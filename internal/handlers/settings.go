package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lehigh-university-libraries/thennow/internal/models"
)

func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.settings.Load(r.Context()))
	case "PUT":
		var request struct {
			ImageQuality string `json:"image_quality"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}

		quality, err := models.ParseImageQuality(request.ImageQuality)
		if err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		settings := h.settings.Load(r.Context())
		settings.ImageQuality = quality
		if err := h.settings.Save(r.Context(), settings); err != nil {
			h.writeFailure(w, err)
			return
		}
		h.writeJSON(w, settings)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
