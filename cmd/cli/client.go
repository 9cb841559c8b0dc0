package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Client is an HTTP client for the TestForge API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	debug      bool
}

func getClient() (*Client, error) {
	baseURL := getConfigURL()
	if baseURL == "" {
		return nil, fmt.Errorf("API server URL is required. Set it via --url flag, TESTFORGE_URL env var, or ~/.testforge.yaml")
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: getConfigTimeout(),
		},
		debug: flagDebug,
	}, nil
}

// request builds and sends one API call. A nil body sends no payload.
func (c *Client) request(method, path string, query url.Values, body interface{}) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, u, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "testforge-cli/"+Version)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.debug {
		fmt.Fprintf(os.Stderr, "DEBUG: %s %s\n", method, u)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		fmt.Fprintf(os.Stderr, "DEBUG: Status %d\n", resp.StatusCode)
		fmt.Fprintf(os.Stderr, "DEBUG: Body: %s\n", string(respBody))
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	return respBody, nil
}

func (c *Client) Get(path string, query url.Values) ([]byte, error) {
	return c.request(http.MethodGet, path, query, nil)
}

func (c *Client) Post(path string, body interface{}) ([]byte, error) {
	return c.request(http.MethodPost, path, nil, body)
}

func (c *Client) Delete(path string) ([]byte, error) {
	return c.request(http.MethodDelete, path, nil, nil)
}
