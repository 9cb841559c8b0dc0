package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gunitk/testforge/logger"
)

const (
	KeyClaude = "claude"

	anthropicVersion = "2023-06-01"
)

// AnthropicConfig configures the direct Anthropic API provider.
type AnthropicConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// AnthropicProvider sends prompts to the Anthropic messages API.
type AnthropicProvider struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
	logger     logger.Logger
}

func NewAnthropicProvider(cfg AnthropicConfig, log logger.Logger) *AnthropicProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5-20250514"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &AnthropicProvider{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log,
	}
}

func (p *AnthropicProvider) Key() string { return KeyClaude }

func (p *AnthropicProvider) Describe() Descriptor {
	return Descriptor{
		Key:         KeyClaude,
		Name:        "Claude",
		Family:      FamilyAnthropic,
		Model:       p.model,
		Description: "Advanced reasoning and analysis capabilities",
	}
}

func (p *AnthropicProvider) Available() bool {
	return p.apiKey != ""
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *AnthropicProvider) Send(ctx context.Context, prompt string) (string, error) {
	if !p.Available() {
		return "", fmt.Errorf("%w: anthropic api key not configured", ErrProviderUnavailable)
	}

	// Bound the call when the caller's context carries no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.httpClient.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %s", ErrProviderCallFailed, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %s", ErrProviderCallFailed, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrProviderCallFailed, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %s", ErrProviderCallFailed, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn(ctx, "anthropic api returned error status", map[string]interface{}{
			"status": resp.StatusCode,
		})
		return "", fmt.Errorf("%w: status %d: %s", ErrProviderCallFailed, resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: parse response: %s", ErrProviderCallFailed, err.Error())
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: api error: %s", ErrProviderCallFailed, parsed.Error.Message)
	}

	var out strings.Builder
	for _, content := range parsed.Content {
		if content.Type == "text" {
			out.WriteString(content.Text)
		}
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrProviderCallFailed)
	}
	return text, nil
}

// Probe checks API connectivity by listing models; it consumes no
// generation quota.
func (p *AnthropicProvider) Probe(ctx context.Context) error {
	if !p.Available() {
		return fmt.Errorf("%w: anthropic api key not configured", ErrProviderUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %s", ErrProviderCallFailed, err.Error())
	}
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrProviderCallFailed, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrProviderCallFailed, resp.StatusCode)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
