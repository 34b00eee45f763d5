package handlers

import (
	"fmt"
	"net/http"
)

func (h *Handler) HandleSyncPush(w http.ResponseWriter, r *http.Request) {
	h.runSync(w, r, func() (string, error) {
		if err := h.syncer.SyncToServer(r.Context()); err != nil {
			return "", err
		}
		return "Upload complete", nil
	})
}

func (h *Handler) HandleSyncPull(w http.ResponseWriter, r *http.Request) {
	h.runSync(w, r, func() (string, error) {
		records, err := h.syncer.SyncFromServer(r.Context())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Downloaded %d locations", len(records)), nil
	})
}

// runSync allows one pass at a time. A request arriving while a pass is in
// flight gets 409 instead of starting another.
func (h *Handler) runSync(w http.ResponseWriter, r *http.Request, pass func() (string, error)) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.syncing.CompareAndSwap(false, true) {
		h.writeError(w, "Sync already in progress", http.StatusConflict)
		return
	}
	defer h.syncing.Store(false)

	message, err := pass()
	if err != nil {
		h.writeFailure(w, fmt.Errorf("sync failed: %w", err))
		return
	}

	h.writeJSON(w, map[string]any{
		"message": message,
	})
}
