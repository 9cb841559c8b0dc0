package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/gunitk/testforge/executor"
	"github.com/gunitk/testforge/integration"
	"github.com/gunitk/testforge/logger"
)

// IssueReporter files execution failures on an external issue tracker.
type IssueReporter interface {
	Report(ctx context.Context, execution *executor.Execution, integrationID uuid.UUID) (*integration.IssueLink, error)
}

// ExecutionHandler handles execution record requests.
type ExecutionHandler struct {
	executions executor.Store
	reporter   IssueReporter
	logger     logger.Logger
}

// NewExecutionHandler creates a new execution handler.
func NewExecutionHandler(executions executor.Store, reporter IssueReporter, log logger.Logger) *ExecutionHandler {
	return &ExecutionHandler{
		executions: executions,
		reporter:   reporter,
		logger:     log,
	}
}

// GetByID handles GET /api/v1/executions/{executionID}.
func (h *ExecutionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "executionID", "execution")
	if !ok {
		return
	}

	execution, err := h.executions.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, executor.ErrExecutionNotFound) {
			respondError(w, http.StatusNotFound, "execution not found")
			return
		}
		h.logger.Error(r.Context(), "failed to get execution", map[string]interface{}{
			"error":        err.Error(),
			"execution_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to get execution")
		return
	}

	respondJSON(w, http.StatusOK, execution)
}

// ReportRequest represents an issue reporting request.
type ReportRequest struct {
	IntegrationID string `json:"integration_id"`
}

// Report handles POST /api/v1/executions/{executionID}/report. One issue is
// filed covering the execution's failed cases.
func (h *ExecutionHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "executionID", "execution")
	if !ok {
		return
	}

	var req ReportRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	integrationID, err := uuid.Parse(req.IntegrationID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid integration ID: must be a valid UUID")
		return
	}

	execution, err := h.executions.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, executor.ErrExecutionNotFound) {
			respondError(w, http.StatusNotFound, "execution not found")
			return
		}
		h.logger.Error(r.Context(), "failed to get execution", map[string]interface{}{
			"error":        err.Error(),
			"execution_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to get execution")
		return
	}

	link, err := h.reporter.Report(r.Context(), execution, integrationID)
	if err != nil {
		switch {
		case errors.Is(err, integration.ErrIntegrationNotFound):
			respondError(w, http.StatusNotFound, "integration not found")
		case errors.Is(err, integration.ErrNoFailedCases):
			respondError(w, http.StatusConflict, "execution has no failed test cases")
		case errors.Is(err, integration.ErrIntegrationInactive):
			respondError(w, http.StatusConflict, "integration is inactive")
		default:
			h.logger.Error(r.Context(), "failed to report execution failures", map[string]interface{}{
				"error":        err.Error(),
				"execution_id": id.String(),
			})
			respondError(w, http.StatusBadGateway, "failed to file issue with tracker")
		}
		return
	}

	respondJSON(w, http.StatusCreated, link)
}
