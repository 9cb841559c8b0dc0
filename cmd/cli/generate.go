package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var sessionID, providerKey string
	var categories []string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate AI test cases for an analyzed session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			req := GenerateRequest{
				Categories: categories,
				Provider:   providerKey,
			}

			s := newSpinner("Generating test cases...")
			body, err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/generate", sessionID), req)
			stopSpinner(s)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var resp GenerateResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			headers := []string{"#", "NAME", "CATEGORY", "PRIORITY", "STEPS"}
			var rows [][]string
			for i, tc := range resp.TestCases {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					truncate(tc.Name, 50),
					string(tc.Category),
					string(tc.Priority),
					strconv.Itoa(len(tc.Steps)),
				})
			}
			printTable(headers, rows)
			printMessage(fmt.Sprintf("\nGenerated %d test cases with %s", resp.Count, resp.ProviderUsed))
			printMessage(fmt.Sprintf("Run 'testforge-cli execute --session %s' to execute them.", sessionID))
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID from analyze (required)")
	cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&providerKey, "provider", "", "AI provider key (defaults to the server's default provider)")
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "Test categories, e.g. functional,ui,validation,error-handling,security,performance,accessibility")
	return cmd
}
