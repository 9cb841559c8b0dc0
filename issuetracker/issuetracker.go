// Package issuetracker files execution failure reports on external issue
// trackers.
package issuetracker

import (
	"context"
	"errors"
)

var (
	ErrInvalidProvider  = errors.New("invalid provider type")
	ErrConnectionFailed = errors.New("connection validation failed")
)

type ProviderType string

const (
	ProviderJira   ProviderType = "jira"
	ProviderGitHub ProviderType = "github"
)

func (p ProviderType) IsValid() bool {
	return p == ProviderJira || p == ProviderGitHub
}

// Issue is a report to file on a tracker.
type Issue struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Labels      []string `json:"labels,omitempty"`
}

// CreatedIssue describes a filed issue as the tracker recorded it.
type CreatedIssue struct {
	ExternalID string       `json:"external_id"`
	Title      string       `json:"title"`
	Status     string       `json:"status"`
	URL        string       `json:"url"`
	Provider   ProviderType `json:"provider"`
}

// Client files issues on one tracker with one set of credentials. The
// target repository or project is part of the credentials, not the issue.
type Client interface {
	CreateIssue(ctx context.Context, issue Issue) (*CreatedIssue, error)
	TestConnection(ctx context.Context) error
}
