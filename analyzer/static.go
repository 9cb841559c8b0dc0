package analyzer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxStaticBody caps how much HTML the static fetcher reads.
const maxStaticBody = 5 << 20

// StaticSource fetches raw page HTML over plain HTTP. It sees the document
// as served, before any scripts run, and backs analysis when no browser is
// available.
type StaticSource struct {
	client *http.Client
}

func NewStaticSource(timeout time.Duration) *StaticSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &StaticSource{
		client: &http.Client{Timeout: timeout},
	}
}

// FetchHTML returns the response body of a GET against url.
func (s *StaticSource) FetchHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStaticBody))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}
