package handlers

import (
	"net/http"

	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/session"
)

// SessionHandler handles analysis session requests.
type SessionHandler struct {
	sessions *session.Manager
	cookies  *session.Codec
	logger   logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *session.Manager, cookies *session.Codec, log logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		cookies:  cookies,
		logger:   log,
	}
}

// GetByID handles GET /api/v1/sessions/{sessionID}.
func (h *SessionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	sessionID := resolveSessionID(r, h.cookies)
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	sess, err := h.sessions.Get(sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, "session not found or expired")
		return
	}

	respondJSON(w, http.StatusOK, sess)
}
