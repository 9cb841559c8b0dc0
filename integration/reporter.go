package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gunitk/testforge/executor"
	"github.com/gunitk/testforge/issuetracker"
	"github.com/gunitk/testforge/logger"
)

var (
	// ErrNoFailedCases is returned when an execution has nothing to report.
	ErrNoFailedCases = errors.New("execution has no failed test cases")

	// ErrIntegrationInactive is returned when the selected integration is
	// disabled.
	ErrIntegrationInactive = errors.New("integration is inactive")
)

// Reporter files one tracker issue per execution covering its failed cases
// and records the resulting issue link.
type Reporter struct {
	store   Store
	clients issuetracker.ClientFactory
	key     []byte
	logger  logger.Logger
}

// NewReporter creates a reporter. The key decrypts stored integration
// credentials.
func NewReporter(store Store, clients issuetracker.ClientFactory, key []byte, log logger.Logger) *Reporter {
	return &Reporter{
		store:   store,
		clients: clients,
		key:     key,
		logger:  log,
	}
}

// Report files an issue for the execution's failed cases through the given
// integration.
func (r *Reporter) Report(ctx context.Context, execution *executor.Execution, integrationID uuid.UUID) (*IssueLink, error) {
	failed := failedResults(execution.Results)
	if len(failed) == 0 {
		return nil, ErrNoFailedCases
	}

	integ, err := r.store.GetIntegrationByID(ctx, integrationID)
	if err != nil {
		return nil, err
	}
	if !integ.IsActive {
		return nil, ErrIntegrationInactive
	}

	credentials, err := DecryptCredentials(r.key, integ.EncryptedCredentials)
	if err != nil {
		r.logger.Error(ctx, "failed to decrypt integration credentials", map[string]interface{}{
			"integration_id": integ.ID.String(),
			"error":          err.Error(),
		})
		return nil, err
	}

	client, err := r.clients.NewClient(integ.Provider, credentials)
	if err != nil {
		return nil, err
	}

	created, err := client.CreateIssue(ctx, ComposeIssue(execution))
	if err != nil {
		r.logger.Error(ctx, "failed to file tracker issue", map[string]interface{}{
			"integration_id": integ.ID.String(),
			"execution_id":   execution.ID.String(),
			"error":          err.Error(),
		})
		return nil, err
	}

	link := &IssueLink{
		ExecutionID:   execution.ID,
		IntegrationID: integ.ID,
		ExternalID:    created.ExternalID,
		Title:         created.Title,
		Status:        created.Status,
		URL:           created.URL,
		Provider:      created.Provider,
	}
	if err := r.store.CreateIssueLink(ctx, link); err != nil {
		return nil, err
	}

	r.logger.Info(ctx, "execution failures reported", map[string]interface{}{
		"execution_id": execution.ID.String(),
		"external_id":  created.ExternalID,
		"provider":     string(created.Provider),
	})

	return link, nil
}

// ComposeIssue renders the tracker issue for an execution's failed cases.
func ComposeIssue(execution *executor.Execution) issuetracker.Issue {
	failed := failedResults(execution.Results)

	var b strings.Builder
	fmt.Fprintf(&b, "Automated test execution against %s finished with %d failed of %d cases.\n",
		execution.TargetURL, len(failed), execution.TotalTests)
	fmt.Fprintf(&b, "\nExecution: %s\n", execution.ID)
	if execution.CompletedAt != nil {
		fmt.Fprintf(&b, "Completed: %s\n", execution.CompletedAt.UTC().Format(time.RFC3339))
	}

	b.WriteString("\nFailed cases:\n")
	for i, result := range failed {
		fmt.Fprintf(&b, "\n%d. %s (%s, %s priority)\n", i+1, result.TestName, result.Category, result.Priority)
		if result.Error != "" {
			fmt.Fprintf(&b, "   Error: %s\n", result.Error)
		}
		if result.Details != "" {
			fmt.Fprintf(&b, "   Observed: %s\n", result.Details)
		}
	}

	return issuetracker.Issue{
		Title: fmt.Sprintf("Test execution failures (%d/%d) - %s",
			len(failed), execution.TotalTests, execution.TargetURL),
		Description: b.String(),
		Labels:      []string{"automated-test", "test-failure"},
	}
}

func failedResults(results []executor.Result) []executor.Result {
	var failed []executor.Result
	for _, result := range results {
		if result.Status == executor.CaseStatusFailed {
			failed = append(failed, result)
		}
	}
	return failed
}
