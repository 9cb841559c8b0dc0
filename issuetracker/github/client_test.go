package github

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
		"token":    "test-token",
		"owner":    "acme",
		"repo":     "webapp",
		"base_url": server.URL,
	})
	require.NoError(t, err)
	return client, server
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		credentials map[string]string
		wantErr     bool
	}{
		{
			name:        "valid credentials",
			credentials: map[string]string{"token": "ghp_test", "owner": "acme", "repo": "webapp"},
			wantErr:     false,
		},
		{
			name:        "missing token",
			credentials: map[string]string{"owner": "acme", "repo": "webapp"},
			wantErr:     true,
		},
		{
			name:        "missing owner",
			credentials: map[string]string{"token": "ghp_test", "repo": "webapp"},
			wantErr:     true,
		},
		{
			name:        "missing repo",
			credentials: map[string]string{"token": "ghp_test", "owner": "acme"},
			wantErr:     true,
		},
		{
			name: "with base_url",
			credentials: map[string]string{
				"token": "ghp_test", "owner": "acme", "repo": "webapp",
				"base_url": "https://github.acme.test/api/v3",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, err := NewClient(tt.credentials)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, client)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func TestCreateIssue(t *testing.T) {
	t.Parallel()
	var gotBody map[string]interface{}
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/repos/acme/webapp/issues", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"number":   42,
			"title":    "Test execution failures (2/5) - http://localhost:3000",
			"state":    "open",
			"html_url": "https://github.com/acme/webapp/issues/42",
		})
	}))
	defer server.Close()

	created, err := client.CreateIssue(context.Background(), issuetracker.Issue{
		Title:       "Test execution failures (2/5) - http://localhost:3000",
		Description: "Failed cases:\n1. Login flow",
		Labels:      []string{"automated-test"},
	})
	require.NoError(t, err)
	assert.Equal(t, "acme/webapp#42", created.ExternalID)
	assert.Equal(t, "open", created.Status)
	assert.Equal(t, "https://github.com/acme/webapp/issues/42", created.URL)
	assert.Equal(t, issuetracker.ProviderGitHub, created.Provider)

	assert.Equal(t, "Failed cases:\n1. Login flow", gotBody["body"])
	assert.Equal(t, []interface{}{"automated-test"}, gotBody["labels"])
}

func TestCreateIssueServerError(t *testing.T) {
	t.Parallel()
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"Validation Failed"}`))
	}))
	defer server.Close()

	_, err := client.CreateIssue(context.Background(), issuetracker.Issue{Title: "Fail"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
}

func TestTestConnection(t *testing.T) {
	t.Parallel()
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"login": "qa-bot"})
	}))
	defer server.Close()

	assert.NoError(t, client.TestConnection(context.Background()))
}

func TestTestConnectionFailed(t *testing.T) {
	t.Parallel()
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	err := client.TestConnection(context.Background())
	assert.ErrorIs(t, err, issuetracker.ErrConnectionFailed)
}
