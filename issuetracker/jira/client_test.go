package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunitk/testforge/issuetracker"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	client, err := NewClient(map[string]string{
		"url":         server.URL,
		"email":       "qa@acme.test",
		"api_token":   "jira-token",
		"project_key": "QA",
	})
	require.NoError(t, err)
	return client, server
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	valid := map[string]string{
		"url":         "https://acme.atlassian.net",
		"email":       "qa@acme.test",
		"api_token":   "jira-token",
		"project_key": "QA",
	}

	client, err := NewClient(valid)
	require.NoError(t, err)
	assert.NotNil(t, client)

	for _, field := range []string{"url", "email", "api_token", "project_key"} {
		t.Run("missing "+field, func(t *testing.T) {
			credentials := make(map[string]string, len(valid))
			for k, v := range valid {
				credentials[k] = v
			}
			delete(credentials, field)

			_, err := NewClient(credentials)
			assert.Error(t, err)
		})
	}
}

func TestCreateIssue(t *testing.T) {
	t.Parallel()
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "qa@acme.test", user)
		assert.Equal(t, "jira-token", pass)

		switch {
		case r.Method == "POST" && r.URL.Path == "/rest/api/2/issue":
			var body struct {
				Fields map[string]interface{} `json:"fields"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]interface{}{"key": "QA"}, body.Fields["project"])
			assert.Equal(t, map[string]interface{}{"name": "Bug"}, body.Fields["issuetype"])
			assert.Equal(t, "Test execution failures (1/3) - http://localhost:3000", body.Fields["summary"])

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"id": "10042", "key": "QA-7"})

		case r.Method == "GET" && r.URL.Path == "/rest/api/2/issue/QA-7":
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"key": "QA-7",
				"fields": map[string]interface{}{
					"summary": "Test execution failures (1/3) - http://localhost:3000",
					"status":  map[string]string{"name": "To Do"},
				},
			})

		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	created, err := client.CreateIssue(context.Background(), issuetracker.Issue{
		Title:       "Test execution failures (1/3) - http://localhost:3000",
		Description: "Failed cases:\n1. Checkout",
	})
	require.NoError(t, err)
	assert.Equal(t, "QA-7", created.ExternalID)
	assert.Equal(t, "To Do", created.Status)
	assert.Equal(t, server.URL+"/browse/QA-7", created.URL)
	assert.Equal(t, issuetracker.ProviderJira, created.Provider)
}

func TestCreateIssueServerError(t *testing.T) {
	t.Parallel()
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorMessages":["project is required"]}`))
	}))
	defer server.Close()

	_, err := client.CreateIssue(context.Background(), issuetracker.Issue{Title: "Fail"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestTestConnection(t *testing.T) {
	t.Parallel()
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/rest/api/2/myself", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"accountId": "abc123"})
	}))
	defer server.Close()

	assert.NoError(t, client.TestConnection(context.Background()))
}

func TestTestConnectionFailed(t *testing.T) {
	t.Parallel()
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	err := client.TestConnection(context.Background())
	assert.ErrorIs(t, err, issuetracker.ErrConnectionFailed)
}
