package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunitk/testforge/executor"
	"github.com/gunitk/testforge/integration"
	"github.com/gunitk/testforge/issuetracker"
	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/testutil"
)

type fakeReporter struct {
	link         *integration.IssueLink
	err          error
	gotExecution *executor.Execution
	gotIntegID   uuid.UUID
}

func (f *fakeReporter) Report(_ context.Context, execution *executor.Execution, integrationID uuid.UUID) (*integration.IssueLink, error) {
	f.gotExecution = execution
	f.gotIntegID = integrationID
	if f.err != nil {
		return nil, f.err
	}
	return f.link, nil
}

func newExecutionStore(t *testing.T) executor.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &executor.Execution{})
	return executor.NewMySQLStore(db, logger.NewTestLogger())
}

func seedExecution(t *testing.T, store executor.Store) *executor.Execution {
	t.Helper()
	execution := completedExecution(uuid.New().String())
	execution.ID = uuid.Nil
	require.NoError(t, store.Create(context.Background(), execution))
	return execution
}

func TestExecutionHandler_GetByID(t *testing.T) {
	store := newExecutionStore(t)
	execution := seedExecution(t, store)
	handler := NewExecutionHandler(store, &fakeReporter{}, logger.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/executions/"+execution.ID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"executionID": execution.ID.String()})
	w := httptest.NewRecorder()
	handler.GetByID(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got executor.Execution
	decodeJSON(t, w, &got)
	assert.Equal(t, execution.ID, got.ID)
	assert.Equal(t, execution.SessionID, got.SessionID)
}

func TestExecutionHandler_GetByID_InvalidID(t *testing.T) {
	handler := NewExecutionHandler(newExecutionStore(t), &fakeReporter{}, logger.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/executions/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"executionID": "abc"})
	w := httptest.NewRecorder()
	handler.GetByID(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecutionHandler_GetByID_NotFound(t *testing.T) {
	handler := NewExecutionHandler(newExecutionStore(t), &fakeReporter{}, logger.NewTestLogger())

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/executions/"+id, nil)
	req = mux.SetURLVars(req, map[string]string{"executionID": id})
	w := httptest.NewRecorder()
	handler.GetByID(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExecutionHandler_Report(t *testing.T) {
	store := newExecutionStore(t)
	execution := seedExecution(t, store)
	integrationID := uuid.New()

	reporter := &fakeReporter{link: &integration.IssueLink{
		ID:            uuid.New(),
		ExecutionID:   execution.ID,
		IntegrationID: integrationID,
		ExternalID:    "acme/webapp#42",
		Title:         "Test execution failures (1/2) - http://localhost:3000",
		Status:        "open",
		URL:           "https://github.com/acme/webapp/issues/42",
		Provider:      issuetracker.ProviderGitHub,
	}}
	handler := NewExecutionHandler(store, reporter, logger.NewTestLogger())

	req := postJSON(t, "/api/v1/executions/"+execution.ID.String()+"/report", ReportRequest{
		IntegrationID: integrationID.String(),
	})
	req = mux.SetURLVars(req, map[string]string{"executionID": execution.ID.String()})
	w := httptest.NewRecorder()
	handler.Report(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var link integration.IssueLink
	decodeJSON(t, w, &link)
	assert.Equal(t, "acme/webapp#42", link.ExternalID)
	assert.Equal(t, "https://github.com/acme/webapp/issues/42", link.URL)

	require.NotNil(t, reporter.gotExecution)
	assert.Equal(t, execution.ID, reporter.gotExecution.ID)
	assert.Equal(t, integrationID, reporter.gotIntegID)
}

func TestExecutionHandler_Report_InvalidIntegrationID(t *testing.T) {
	store := newExecutionStore(t)
	execution := seedExecution(t, store)
	handler := NewExecutionHandler(store, &fakeReporter{}, logger.NewTestLogger())

	req := postJSON(t, "/api/v1/executions/"+execution.ID.String()+"/report", ReportRequest{
		IntegrationID: "not-a-uuid",
	})
	req = mux.SetURLVars(req, map[string]string{"executionID": execution.ID.String()})
	w := httptest.NewRecorder()
	handler.Report(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecutionHandler_Report_ExecutionNotFound(t *testing.T) {
	handler := NewExecutionHandler(newExecutionStore(t), &fakeReporter{}, logger.NewTestLogger())

	id := uuid.New().String()
	req := postJSON(t, "/api/v1/executions/"+id+"/report", ReportRequest{
		IntegrationID: uuid.New().String(),
	})
	req = mux.SetURLVars(req, map[string]string{"executionID": id})
	w := httptest.NewRecorder()
	handler.Report(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExecutionHandler_Report_ReporterErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"unknown integration", integration.ErrIntegrationNotFound, http.StatusNotFound, "integration not found"},
		{"no failed cases", integration.ErrNoFailedCases, http.StatusConflict, "execution has no failed test cases"},
		{"inactive integration", integration.ErrIntegrationInactive, http.StatusConflict, "integration is inactive"},
		{"tracker failure", errors.New("unexpected status 503"), http.StatusBadGateway, "failed to file issue with tracker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newExecutionStore(t)
			execution := seedExecution(t, store)
			handler := NewExecutionHandler(store, &fakeReporter{err: tt.err}, logger.NewTestLogger())

			req := postJSON(t, "/api/v1/executions/"+execution.ID.String()+"/report", ReportRequest{
				IntegrationID: uuid.New().String(),
			})
			req = mux.SetURLVars(req, map[string]string{"executionID": execution.ID.String()})
			w := httptest.NewRecorder()
			handler.Report(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			decodeJSON(t, w, &resp)
			assert.Equal(t, tt.wantError, resp.Error)
		})
	}
}
