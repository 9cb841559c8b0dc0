package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gunitk/testforge/analyzer"
	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/session"
	"github.com/gunitk/testforge/target"
)

// Analyzer inspects a target application and builds its context.
type Analyzer interface {
	Analyze(ctx context.Context, rawURL string) (*analyzer.Context, error)
}

// AnalyzeHandler handles target application analysis requests.
type AnalyzeHandler struct {
	analyzer Analyzer
	sessions *session.Manager
	cookies  *session.Codec
	logger   logger.Logger
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(a Analyzer, sessions *session.Manager, cookies *session.Codec, log logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: a,
		sessions: sessions,
		cookies:  cookies,
		logger:   log,
	}
}

// AnalyzeRequest represents an analysis request.
type AnalyzeRequest struct {
	URL string `json:"url"`
}

// AnalyzeResponse represents a successful analysis.
type AnalyzeResponse struct {
	SessionID  string            `json:"session_id"`
	TargetType target.Type       `json:"target_type"`
	Context    *analyzer.Context `json:"context"`
	Report     string            `json:"report"`
}

// Analyze handles POST /api/v1/analyze. A successful analysis opens a
// session and sets the signed session cookie.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	appCtx, err := h.analyzer.Analyze(r.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, target.ErrInvalidURL), errors.Is(err, target.ErrUnsupportedTarget):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, target.ErrUnreachable):
			respondError(w, http.StatusBadGateway, err.Error())
		default:
			h.logger.Error(r.Context(), "failed to analyze application", map[string]interface{}{
				"error": err.Error(),
				"url":   req.URL,
			})
			respondError(w, http.StatusBadGateway, "failed to analyze application")
		}
		return
	}

	tgt, err := target.Classify(appCtx.URL)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := h.sessions.Create(appCtx.URL, tgt.Type, appCtx)
	if h.cookies != nil {
		if err := h.cookies.Write(w, sess.ID); err != nil {
			h.logger.Warn(r.Context(), "failed to set session cookie", map[string]interface{}{
				"error":      err.Error(),
				"session_id": sess.ID,
			})
		}
	}

	respondJSON(w, http.StatusOK, AnalyzeResponse{
		SessionID:  sess.ID,
		TargetType: sess.TargetType,
		Context:    appCtx,
		Report:     appCtx.Report(),
	})
}
