package handlers

import (
	"net/http"
	"path/filepath"
	"strings"
)

// HandleImage serves a stored blob by file name
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/images/")

	// Prevent directory traversal attacks
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	http.ServeFile(w, r, filepath.Join(h.imagesDir, name))
}
