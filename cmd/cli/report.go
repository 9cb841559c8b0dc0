package main

import (
	"encoding/json"
	"fmt"

	"github.com/gunitk/testforge/integration"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var executionID, integrationID string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "File an execution's failed test cases with an issue tracker",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			req := ReportRequest{IntegrationID: integrationID}

			body, err := client.Post(fmt.Sprintf("/api/v1/executions/%s/report", executionID), req)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var link integration.IssueLink
			if err := json.Unmarshal(body, &link); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printMessage(fmt.Sprintf("Issue filed: %s", link.ExternalID))
			if link.URL != "" {
				printMessage(link.URL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&executionID, "execution", "", "Execution ID (required)")
	cmd.MarkFlagRequired("execution")
	cmd.Flags().StringVar(&integrationID, "integration", "", "Integration ID (required)")
	cmd.MarkFlagRequired("integration")
	return cmd
}
