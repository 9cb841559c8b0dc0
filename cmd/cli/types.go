package main

import (
	"github.com/google/uuid"
	"github.com/gunitk/testforge/analyzer"
	"github.com/gunitk/testforge/executor"
	"github.com/gunitk/testforge/integration"
	"github.com/gunitk/testforge/issuetracker"
	"github.com/gunitk/testforge/provider"
	"github.com/gunitk/testforge/target"
	"github.com/gunitk/testforge/testcase"
)

// ErrorResponse matches handlers.ErrorResponse.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse matches handlers.SuccessResponse.
type SuccessResponse struct {
	Message string `json:"message"`
}

// AnalyzeRequest matches handlers.AnalyzeRequest.
type AnalyzeRequest struct {
	URL string `json:"url"`
}

// AnalyzeResponse matches handlers.AnalyzeResponse.
type AnalyzeResponse struct {
	SessionID  string            `json:"session_id"`
	TargetType target.Type       `json:"target_type"`
	Context    *analyzer.Context `json:"context"`
	Report     string            `json:"report"`
}

// GenerateRequest matches handlers.GenerateRequest.
type GenerateRequest struct {
	Categories []string `json:"categories,omitempty"`
	Provider   string   `json:"provider,omitempty"`
}

// GenerateResponse matches handlers.GenerateResponse.
type GenerateResponse struct {
	TestCases    []testcase.TestCase `json:"test_cases"`
	ProviderUsed string              `json:"provider_used"`
	Count        int                 `json:"count"`
	DownloadURL  string              `json:"download_url"`
}

// ExecuteRequest matches handlers.ExecuteRequest.
type ExecuteRequest struct {
	TestCases []testcase.TestCase `json:"test_cases,omitempty"`
	Limit     int                 `json:"limit,omitempty"`
}

// ExecuteResponse matches handlers.ExecuteResponse.
type ExecuteResponse struct {
	ExecutionID uuid.UUID            `json:"execution_id"`
	Status      executor.Status      `json:"status"`
	Results     executor.JSONResults `json:"results"`
	Summary     executor.Summary     `json:"summary"`
	DownloadURL string               `json:"download_url"`
}

// ProvidersResponse matches handlers.ProvidersResponse.
type ProvidersResponse struct {
	Providers []provider.Descriptor `json:"providers"`
	Default   string                `json:"default"`
}

// CreateIntegrationRequest matches handlers.CreateIntegrationRequest.
type CreateIntegrationRequest struct {
	Name        string                    `json:"name"`
	Provider    issuetracker.ProviderType `json:"provider"`
	Credentials map[string]string         `json:"credentials"`
}

// IntegrationListResponse matches the integrations list envelope.
type IntegrationListResponse struct {
	Items []integration.Integration `json:"items"`
	Total int                       `json:"total"`
}

// ReportRequest matches handlers.ReportRequest.
type ReportRequest struct {
	IntegrationID string `json:"integration_id"`
}
