package provider

import (
	"context"
	"errors"
)

var (
	// ErrProviderUnavailable is returned when a provider has no credentials
	// or configuration to operate with.
	ErrProviderUnavailable = errors.New("provider is not available")

	// ErrProviderCallFailed is returned when a generation call to a provider
	// fails. The manager treats it as transient and advances the fallback
	// chain.
	ErrProviderCallFailed = errors.New("provider call failed")

	// ErrAllProvidersFailed is returned when every configured provider has
	// been attempted and failed, or none is configured at all.
	ErrAllProvidersFailed = errors.New("no provider available")
)

// Family identifies the backend technology behind a provider.
type Family string

const (
	FamilyAnthropic Family = "anthropic"
	FamilyGoogle    Family = "google"
	FamilyBedrock   Family = "aws-bedrock"
)

// Descriptor describes one configured AI backend for API consumers.
type Descriptor struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Family      Family `json:"family"`
	Model       string `json:"model"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// Provider is one interchangeable AI text-generation backend. The manager
// never inspects concrete backend identity beyond the descriptor.
type Provider interface {
	// Key returns the stable configuration key for this provider.
	Key() string

	// Describe returns the descriptor without the availability flag
	// evaluated; the manager owns availability caching.
	Describe() Descriptor

	// Available reports whether required credentials and configuration are
	// present. It must be cheap and must not consume generation quota.
	Available() bool

	// Send submits a prompt and returns the raw text output.
	Send(ctx context.Context, prompt string) (string, error)
}

// LiveProber is implemented by providers that support a lightweight
// connectivity check during an explicit refresh. Probes must not consume
// generation quota.
type LiveProber interface {
	Probe(ctx context.Context) error
}
