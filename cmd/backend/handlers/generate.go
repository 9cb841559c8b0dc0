package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gunitk/testforge/generation"
	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/session"
	"github.com/gunitk/testforge/testcase"
)

// Generator produces a persisted suite of test cases for a session.
type Generator interface {
	GenerateAll(ctx context.Context, req generation.Request) (*generation.Result, error)
}

// GenerateHandler handles test case generation requests.
type GenerateHandler struct {
	sessions  *session.Manager
	cookies   *session.Codec
	generator Generator
	logger    logger.Logger
}

// NewGenerateHandler creates a new generate handler.
func NewGenerateHandler(sessions *session.Manager, cookies *session.Codec, generator Generator, log logger.Logger) *GenerateHandler {
	return &GenerateHandler{
		sessions:  sessions,
		cookies:   cookies,
		generator: generator,
		logger:    log,
	}
}

// GenerateRequest represents a generation request. Both fields are
// optional; an empty body selects all categories and the default provider.
type GenerateRequest struct {
	Categories []string `json:"categories,omitempty"`
	Provider   string   `json:"provider,omitempty"`
}

// GenerateResponse represents a successful generation.
type GenerateResponse struct {
	TestCases    []testcase.TestCase `json:"test_cases"`
	ProviderUsed string              `json:"provider_used"`
	Count        int                 `json:"count"`
	DownloadURL  string              `json:"download_url"`
}

// Generate handles POST /api/v1/sessions/{sessionID}/generate.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
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

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	categories, err := parseCategories(req.Categories)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.generator.GenerateAll(r.Context(), generation.Request{
		SessionID:  sess.ID,
		TargetURL:  sess.TargetURL,
		Context:    sess.Context,
		Categories: categories,
		Provider:   req.Provider,
	})
	if err != nil {
		h.logger.Error(r.Context(), "failed to generate test cases", map[string]interface{}{
			"error":      err.Error(),
			"session_id": sess.ID,
		})
		respondError(w, http.StatusInternalServerError, "failed to generate test cases")
		return
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		TestCases:    result.Cases,
		ProviderUsed: result.ProviderUsed,
		Count:        len(result.Cases),
		DownloadURL:  testsDownloadURL(sess.ID),
	})
}

// parseCategories validates the requested category names.
func parseCategories(values []string) ([]testcase.Category, error) {
	var categories []testcase.Category
	for _, value := range values {
		category := testcase.Category(strings.TrimSpace(value))
		if !category.IsValid() {
			return nil, fmt.Errorf("unknown category: %s", strings.TrimSpace(value))
		}
		categories = append(categories, category)
	}
	return categories, nil
}
