package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunitk/testforge/analyzer"
	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/storage"
	"github.com/gunitk/testforge/target"
)

func TestDownloadHandler_Tests(t *testing.T) {
	sessions, codec := newTestSessions(t)
	sess := sessions.Create("http://localhost:3000", target.TypeLocal, &analyzer.Context{})

	artifacts, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	payload := []byte(`[{"name":"Create a task"}]`)
	require.NoError(t, artifacts.Save(context.Background(), storage.TestCasesKey(sess.ID), payload))

	handler := NewDownloadHandler(sessions, codec, artifacts, logger.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+sess.ID+"/download/tests", nil)
	req = mux.SetURLVars(req, map[string]string{"sessionID": sess.ID})
	w := httptest.NewRecorder()
	handler.Tests(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="test_cases.json"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, payload, w.Body.Bytes())
}

func TestDownloadHandler_Execution(t *testing.T) {
	sessions, codec := newTestSessions(t)
	sess := sessions.Create("http://localhost:3000", target.TypeLocal, &analyzer.Context{})

	artifacts, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	payload := []byte(`{"summary":{"total_tests":2}}`)
	require.NoError(t, artifacts.Save(context.Background(), storage.ExecutionHistoryKey(sess.ID), payload))

	handler := NewDownloadHandler(sessions, codec, artifacts, logger.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+sess.ID+"/download/execution", nil)
	req = mux.SetURLVars(req, map[string]string{"sessionID": sess.ID})
	w := httptest.NewRecorder()
	handler.Execution(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="execution_history.json"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, payload, w.Body.Bytes())
}

func TestDownloadHandler_NoArtifact(t *testing.T) {
	sessions, codec := newTestSessions(t)
	sess := sessions.Create("http://localhost:3000", target.TypeLocal, &analyzer.Context{})

	artifacts, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	handler := NewDownloadHandler(sessions, codec, artifacts, logger.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+sess.ID+"/download/tests", nil)
	req = mux.SetURLVars(req, map[string]string{"sessionID": sess.ID})
	w := httptest.NewRecorder()
	handler.Tests(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "no generated test cases for this session", resp.Error)
}

func TestDownloadHandler_UnknownSession(t *testing.T) {
	sessions, codec := newTestSessions(t)

	artifacts, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	handler := NewDownloadHandler(sessions, codec, artifacts, logger.NewTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/nope/download/tests", nil)
	req = mux.SetURLVars(req, map[string]string{"sessionID": "nope"})
	w := httptest.NewRecorder()
	handler.Tests(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
