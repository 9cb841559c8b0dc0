package main

import (
	"encoding/json"
	"fmt"

	"github.com/gunitk/testforge/integration"
	"github.com/gunitk/testforge/issuetracker"
	"github.com/spf13/cobra"
)

func newIntegrationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrations",
		Short: "Manage issue tracker integrations",
	}

	cmd.AddCommand(newIntegrationsListCmd())
	cmd.AddCommand(newIntegrationsCreateCmd())
	cmd.AddCommand(newIntegrationsDeleteCmd())
	return cmd
}

func newIntegrationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List issue tracker integrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			body, err := client.Get("/api/v1/integrations", nil)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var resp IntegrationListResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			headers := []string{"ID", "NAME", "PROVIDER", "ACTIVE", "CREATED AT"}
			var rows [][]string
			for _, integ := range resp.Items {
				active := "no"
				if integ.IsActive {
					active = "yes"
				}
				rows = append(rows, []string{
					integ.ID.String(),
					truncate(integ.Name, 40),
					string(integ.Provider),
					active,
					integ.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			printTable(headers, rows)
			printMessage(fmt.Sprintf("\nShowing %d integrations", resp.Total))
			return nil
		},
	}
}

func newIntegrationsCreateCmd() *cobra.Command {
	var name, providerType string
	var credentials map[string]string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an issue tracker integration",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			req := CreateIntegrationRequest{
				Name:        name,
				Provider:    issuetracker.ProviderType(providerType),
				Credentials: credentials,
			}

			body, err := client.Post("/api/v1/integrations", req)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var integ integration.Integration
			if err := json.Unmarshal(body, &integ); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printMessage(fmt.Sprintf("Integration created: %s (%s)", integ.ID, integ.Provider))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Integration name (required)")
	cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&providerType, "provider", "", "Tracker provider: github or jira (required)")
	cmd.MarkFlagRequired("provider")
	cmd.Flags().StringToStringVar(&credentials, "credential", nil, "Tracker credential as key=value; github wants token, owner and repo; jira wants url, email, api_token and project_key")
	return cmd
}

func newIntegrationsDeleteCmd() *cobra.Command {
	var id string
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an issue tracker integration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmAction(fmt.Sprintf("Delete integration %s?", id), yes) {
				printMessage("Aborted.")
				return nil
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			_, err = client.Delete(fmt.Sprintf("/api/v1/integrations/%s", id))
			if err != nil {
				return err
			}

			printMessage("Integration deleted successfully.")
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Integration ID (required)")
	cmd.MarkFlagRequired("id")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip confirmation")
	return cmd
}
