package github

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

const defaultBaseURL = "https://api.github.com"

// Client files issues on one GitHub repository.
type Client struct {
	httpClient *http.Client
	token      string
	baseURL    string
	owner      string
	repo       string
}

// NewClient creates a GitHub issue tracker client. Credentials: token,
// owner, repo; base_url overrides the API host for GitHub Enterprise.
func NewClient(credentials map[string]string) (*Client, error) {
	token := credentials["token"]
	if token == "" {
		return nil, fmt.Errorf("github: token is required")
	}

	owner := credentials["owner"]
	repo := credentials["repo"]
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("github: owner and repo are required")
	}

	baseURL := defaultBaseURL
	if u := credentials["base_url"]; u != "" {
		baseURL = strings.TrimRight(u, "/")
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      token,
		baseURL:    baseURL,
		owner:      owner,
		repo:       repo,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, method, url string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("github: failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("github: failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

type githubIssue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	State   string `json:"state"`
	HTMLURL string `json:"html_url"`
}

// CreateIssue files a new issue on the configured repository.
func (c *Client) CreateIssue(ctx context.Context, issue issuetracker.Issue) (*issuetracker.CreatedIssue, error) {
	reqBody := map[string]interface{}{
		"title": issue.Title,
		"body":  issue.Description,
	}
	if len(issue.Labels) > 0 {
		reqBody["labels"] = issue.Labels
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues", c.baseURL, c.owner, c.repo)
	resp, err := c.doRequest(ctx, http.MethodPost, url, reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("github: create issue failed with status %d: %s", resp.StatusCode, string(body))
	}

	var gi githubIssue
	if err := json.NewDecoder(resp.Body).Decode(&gi); err != nil {
		return nil, fmt.Errorf("github: failed to decode response: %w", err)
	}

	return &issuetracker.CreatedIssue{
		ExternalID: fmt.Sprintf("%s/%s#%d", c.owner, c.repo, gi.Number),
		Title:      gi.Title,
		Status:     gi.State,
		URL:        gi.HTMLURL,
		Provider:   issuetracker.ProviderGitHub,
	}, nil
}

// TestConnection verifies the token by fetching the authenticated user.
func (c *Client) TestConnection(ctx context.Context) error {
	url := fmt.Sprintf("%s/user", c.baseURL)
	resp, err := c.doRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", issuetracker.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", issuetracker.ErrConnectionFailed, resp.StatusCode)
	}

	return nil
}
