package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/gunitk/testforge/executor"
	"github.com/gunitk/testforge/generation"
	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/session"
	"github.com/gunitk/testforge/testcase"
)

// Runner executes test cases against a target application.
type Runner interface {
	Run(ctx context.Context, req executor.Request) (*executor.Execution, error)
}

// ExecuteHandler handles test execution requests.
type ExecuteHandler struct {
	sessions *session.Manager
	cookies  *session.Codec
	suites   generation.Store
	runner   Runner
	logger   logger.Logger
}

// NewExecuteHandler creates a new execute handler.
func NewExecuteHandler(sessions *session.Manager, cookies *session.Codec, suites generation.Store, runner Runner, log logger.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		sessions: sessions,
		cookies:  cookies,
		suites:   suites,
		runner:   runner,
		logger:   log,
	}
}

// ExecuteRequest represents an execution request. Both fields are optional;
// cases default to the session's latest generated suite.
type ExecuteRequest struct {
	TestCases []testcase.TestCase `json:"test_cases,omitempty"`
	Limit     int                 `json:"limit,omitempty"`
}

// ExecuteResponse represents a completed execution batch.
type ExecuteResponse struct {
	ExecutionID uuid.UUID            `json:"execution_id"`
	Status      executor.Status      `json:"status"`
	Results     executor.JSONResults `json:"results"`
	Summary     executor.Summary     `json:"summary"`
	DownloadURL string               `json:"download_url"`
}

// Execute handles POST /api/v1/sessions/{sessionID}/execute.
func (h *ExecuteHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cases := req.TestCases
	var suiteID *uuid.UUID
	if len(cases) == 0 {
		suite, err := h.suites.GetLatestBySession(r.Context(), sess.ID)
		if err != nil {
			if errors.Is(err, generation.ErrSuiteNotFound) {
				respondError(w, http.StatusConflict, "no test cases to execute: generate tests first")
				return
			}
			h.logger.Error(r.Context(), "failed to load latest suite", map[string]interface{}{
				"error":      err.Error(),
				"session_id": sess.ID,
			})
			respondError(w, http.StatusInternalServerError, "failed to load test cases")
			return
		}
		cases = suite.Cases
		suiteID = &suite.ID
	}

	execution, err := h.runner.Run(r.Context(), executor.Request{
		SessionID: sess.ID,
		SuiteID:   suiteID,
		TargetURL: sess.TargetURL,
		Cases:     cases,
		Limit:     req.Limit,
	})
	if err != nil {
		switch {
		case errors.Is(err, executor.ErrNoCases):
			respondError(w, http.StatusConflict, "no test cases to execute: generate tests first")
		case errors.Is(err, executor.ErrDriverUnavailable):
			respondError(w, http.StatusBadGateway, "browser driver unavailable")
		default:
			h.logger.Error(r.Context(), "failed to execute test cases", map[string]interface{}{
				"error":      err.Error(),
				"session_id": sess.ID,
			})
			respondError(w, http.StatusInternalServerError, "failed to execute test cases")
		}
		return
	}

	summary := executor.Summary{
		Total:           execution.TotalTests,
		Passed:          execution.PassedCount,
		Failed:          execution.FailedCount,
		DurationSeconds: execution.DurationSeconds,
	}
	if execution.CompletedAt != nil {
		summary.CompletedAt = *execution.CompletedAt
	}

	respondJSON(w, http.StatusOK, ExecuteResponse{
		ExecutionID: execution.ID,
		Status:      execution.Status,
		Results:     execution.Results,
		Summary:     summary,
		DownloadURL: executionDownloadURL(sess.ID),
	})
}
