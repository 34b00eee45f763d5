package handlers

import (
	"fmt"
	"io"
	"net/http"
)

const maxPhotoSize = 20 * 1024 * 1024

// readPhoto returns the multipart "file" field
func (h *Handler) readPhoto(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}

	if len(data) > maxPhotoSize {
		return nil, fmt.Errorf("file too large (max %dMB)", maxPhotoSize/1024/1024)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	return data, nil
}
