package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gunitk/testforge/issuetracker"
)

// Client files issues on one Jira project.
type Client struct {
	httpClient *http.Client
	baseURL    string
	email      string
	apiToken   string
	projectKey string
}

// NewClient creates a Jira issue tracker client. Credentials: url, email,
// api_token, project_key.
func NewClient(credentials map[string]string) (*Client, error) {
	baseURL := credentials["url"]
	if baseURL == "" {
		return nil, fmt.Errorf("jira: url is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	email := credentials["email"]
	if email == "" {
		return nil, fmt.Errorf("jira: email is required")
	}

	apiToken := credentials["api_token"]
	if apiToken == "" {
		return nil, fmt.Errorf("jira: api_token is required")
	}

	projectKey := credentials["project_key"]
	if projectKey == "" {
		return nil, fmt.Errorf("jira: project_key is required")
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		email:      email,
		apiToken:   apiToken,
		projectKey: projectKey,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, method, url string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("jira: failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("jira: failed to create request: %w", err)
	}

	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

type jiraIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Status  struct {
			Name string `json:"name"`
		} `json:"status"`
	} `json:"fields"`
}

// CreateIssue files a new issue in the configured project.
func (c *Client) CreateIssue(ctx context.Context, issue issuetracker.Issue) (*issuetracker.CreatedIssue, error) {
	fields := map[string]interface{}{
		"project":     map[string]string{"key": c.projectKey},
		"summary":     issue.Title,
		"description": issue.Description,
		"issuetype":   map[string]string{"name": "Bug"},
	}
	if len(issue.Labels) > 0 {
		fields["labels"] = issue.Labels
	}

	apiURL := fmt.Sprintf("%s/rest/api/2/issue", c.baseURL)
	resp, err := c.doRequest(ctx, http.MethodPost, apiURL, map[string]interface{}{"fields": fields})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jira: create issue failed with status %d: %s", resp.StatusCode, string(body))
	}

	var created struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("jira: failed to decode response: %w", err)
	}

	// The create response carries only the key; fetch the issue for its
	// workflow status.
	return c.fetchIssue(ctx, created.Key)
}

func (c *Client) fetchIssue(ctx context.Context, key string) (*issuetracker.CreatedIssue, error) {
	apiURL := fmt.Sprintf("%s/rest/api/2/issue/%s", c.baseURL, key)
	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jira: get issue failed with status %d: %s", resp.StatusCode, string(body))
	}

	var ji jiraIssue
	if err := json.NewDecoder(resp.Body).Decode(&ji); err != nil {
		return nil, fmt.Errorf("jira: failed to decode response: %w", err)
	}

	return &issuetracker.CreatedIssue{
		ExternalID: ji.Key,
		Title:      ji.Fields.Summary,
		Status:     ji.Fields.Status.Name,
		URL:        fmt.Sprintf("%s/browse/%s", c.baseURL, ji.Key),
		Provider:   issuetracker.ProviderJira,
	}, nil
}

// TestConnection verifies the credentials by fetching the current user.
func (c *Client) TestConnection(ctx context.Context) error {
	apiURL := fmt.Sprintf("%s/rest/api/2/myself", c.baseURL)
	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", issuetracker.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", issuetracker.ErrConnectionFailed, resp.StatusCode)
	}

	return nil
}
