package handlers

import (
	"fmt"
	"net/http"

	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/session"
	"github.com/gunitk/testforge/storage"
)

// DownloadHandler serves session artifacts as JSON attachments.
type DownloadHandler struct {
	sessions  *session.Manager
	cookies   *session.Codec
	artifacts storage.BlobStorage
	logger    logger.Logger
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(sessions *session.Manager, cookies *session.Codec, artifacts storage.BlobStorage, log logger.Logger) *DownloadHandler {
	return &DownloadHandler{
		sessions:  sessions,
		cookies:   cookies,
		artifacts: artifacts,
		logger:    log,
	}
}

// Tests handles GET /api/v1/sessions/{sessionID}/download/tests.
func (h *DownloadHandler) Tests(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, storage.TestCasesKey, "test_cases.json", "no generated test cases for this session")
}

// Execution handles GET /api/v1/sessions/{sessionID}/download/execution.
func (h *DownloadHandler) Execution(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, storage.ExecutionHistoryKey, "execution_history.json", "no execution history for this session")
}

func (h *DownloadHandler) serve(w http.ResponseWriter, r *http.Request, key func(string) string, filename, missing string) {
	sessionID := resolveSessionID(r, h.cookies)
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	if _, err := h.sessions.Get(sessionID); err != nil {
		respondError(w, http.StatusNotFound, "session not found or expired")
		return
	}

	exists, err := h.artifacts.Exists(r.Context(), key(sessionID))
	if err != nil {
		h.logger.Error(r.Context(), "failed to check artifact", map[string]interface{}{
			"error":      err.Error(),
			"session_id": sessionID,
		})
		respondError(w, http.StatusInternalServerError, "failed to load artifact")
		return
	}
	if !exists {
		respondError(w, http.StatusNotFound, missing)
		return
	}

	data, err := h.artifacts.Load(r.Context(), key(sessionID))
	if err != nil {
		h.logger.Error(r.Context(), "failed to load artifact", map[string]interface{}{
			"error":      err.Error(),
			"session_id": sessionID,
		})
		respondError(w, http.StatusInternalServerError, "failed to load artifact")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
