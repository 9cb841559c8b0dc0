package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/gunitk/testforge/logger"
)

const KeyGemini = "gemini"

// GeminiConfig configures the Google GenAI provider.
type GeminiConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// GeminiProvider sends prompts through the Google GenAI SDK.
type GeminiProvider struct {
	client    *genai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    logger.Logger
}

func NewGeminiProvider(cfg GeminiConfig, log logger.Logger) *GeminiProvider {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	p := &GeminiProvider{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		logger:    log,
	}

	if cfg.APIKey != "" {
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.APIKey,
		})
		if err != nil {
			log.Warn(context.Background(), "failed to initialize gemini client", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			p.client = client
		}
	}

	return p
}

func (p *GeminiProvider) Key() string { return KeyGemini }

func (p *GeminiProvider) Describe() Descriptor {
	return Descriptor{
		Key:         KeyGemini,
		Name:        "Gemini",
		Family:      FamilyGoogle,
		Model:       p.model,
		Description: "Fast and efficient AI model with strong reasoning",
	}
}

func (p *GeminiProvider) Available() bool {
	return p.client != nil
}

func (p *GeminiProvider) Send(ctx context.Context, prompt string) (string, error) {
	if !p.Available() {
		return "", fmt.Errorf("%w: gemini api key not configured", ErrProviderUnavailable)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(p.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrProviderCallFailed, err.Error())
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrProviderCallFailed)
	}
	return text, nil
}
