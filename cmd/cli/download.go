package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download session artifacts",
	}

	cmd.AddCommand(newDownloadTestsCmd())
	cmd.AddCommand(newDownloadExecutionCmd())
	return cmd
}

func newDownloadTestsCmd() *cobra.Command {
	var sessionID, output string

	cmd := &cobra.Command{
		Use:   "tests",
		Short: "Download the session's generated test cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return downloadArtifact(sessionID, "tests", output, "test_cases.json")
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID from analyze (required)")
	cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&output, "output", "", "Output path (default: test_cases.json)")
	return cmd
}

func newDownloadExecutionCmd() *cobra.Command {
	var sessionID, output string

	cmd := &cobra.Command{
		Use:   "execution",
		Short: "Download the session's execution history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return downloadArtifact(sessionID, "execution", output, "execution_history.json")
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID from analyze (required)")
	cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&output, "output", "", "Output path (default: execution_history.json)")
	return cmd
}

func downloadArtifact(sessionID, kind, output, defaultName string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	body, err := client.Get(fmt.Sprintf("/api/v1/sessions/%s/download/%s", sessionID, kind), nil)
	if err != nil {
		return err
	}

	if flagJSON {
		var raw json.RawMessage
		json.Unmarshal(body, &raw)
		printJSON(raw)
		return nil
	}

	if output == "" {
		output = defaultName
	}
	if err := os.WriteFile(output, body, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	printMessage(fmt.Sprintf("Saved %d bytes to %s", len(body), output))
	return nil
}
