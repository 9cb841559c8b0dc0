// Package clients wires the concrete tracker clients behind the
// issuetracker.ClientFactory seam.
package clients

import (
	"github.com/gunitk/testforge/issuetracker"
	"github.com/gunitk/testforge/issuetracker/github"
	"github.com/gunitk/testforge/issuetracker/jira"
)

// Factory builds GitHub and Jira clients from integration credentials.
type Factory struct{}

func (Factory) NewClient(provider issuetracker.ProviderType, credentials map[string]string) (issuetracker.Client, error) {
	switch provider {
	case issuetracker.ProviderGitHub:
		return github.NewClient(credentials)
	case issuetracker.ProviderJira:
		return jira.NewClient(credentials)
	default:
		return nil, issuetracker.ErrInvalidProvider
	}
}
