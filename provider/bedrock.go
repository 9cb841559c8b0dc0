package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/gunitk/testforge/logger"
)

const KeyBedrock = "bedrock"

// BedrockConfig configures the AWS Bedrock provider. Credentials come from
// the standard AWS chain; Enabled gates whether the provider participates.
type BedrockConfig struct {
	Enabled   bool
	Region    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// bedrockInvoker is the slice of the Bedrock runtime client used here,
// extracted so tests can substitute a fake.
type bedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockProvider sends prompts to Anthropic models hosted on AWS Bedrock.
type BedrockProvider struct {
	client    bedrockInvoker
	modelID   string
	maxTokens int
	timeout   time.Duration
	logger    logger.Logger
}

func NewBedrockProvider(cfg BedrockConfig, log logger.Logger) (*BedrockProvider, error) {
	if cfg.Model == "" {
		cfg.Model = "anthropic.claude-sonnet-4-6"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	p := &BedrockProvider{
		modelID:   cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		logger:    log,
	}

	if !cfg.Enabled {
		return p, nil
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	p.client = bedrockruntime.NewFromConfig(awsCfg)

	return p, nil
}

func (p *BedrockProvider) Key() string { return KeyBedrock }

func (p *BedrockProvider) Describe() Descriptor {
	return Descriptor{
		Key:         KeyBedrock,
		Name:        "Bedrock",
		Family:      FamilyBedrock,
		Model:       p.modelID,
		Description: "Anthropic models served through AWS Bedrock",
	}
}

func (p *BedrockProvider) Available() bool {
	return p.client != nil
}

func (p *BedrockProvider) Send(ctx context.Context, prompt string) (string, error) {
	if !p.Available() {
		return "", fmt.Errorf("%w: bedrock is not enabled", ErrProviderUnavailable)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	requestBody := map[string]interface{}{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        p.maxTokens,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": prompt},
				},
			},
		},
	}

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %s", ErrProviderCallFailed, err.Error())
	}

	output, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrProviderCallFailed, err.Error())
	}

	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", fmt.Errorf("%w: parse response: %s", ErrProviderCallFailed, err.Error())
	}

	var out strings.Builder
	for _, content := range response.Content {
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
