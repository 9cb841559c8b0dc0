package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newExecuteCmd() *cobra.Command {
	var sessionID string
	var limit int

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute the session's generated test cases against the target",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			req := ExecuteRequest{Limit: limit}

			s := newSpinner("Executing test cases...")
			body, err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/execute", sessionID), req)
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

			var resp ExecuteResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			headers := []string{"#", "TEST", "STATUS", "DURATION", "ERROR"}
			var rows [][]string
			for i, res := range resp.Results {
				errMsg := "-"
				if res.Error != "" {
					errMsg = truncate(res.Error, 60)
				}
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					truncate(res.TestName, 50),
					string(res.Status),
					fmt.Sprintf("%.2fs", res.DurationSeconds),
					errMsg,
				})
			}
			printTable(headers, rows)

			printMessage(fmt.Sprintf("\nExecution %s: %d passed, %d failed of %d in %.2fs",
				resp.ExecutionID, resp.Summary.Passed, resp.Summary.Failed, resp.Summary.Total, resp.Summary.DurationSeconds))
			if resp.Summary.Failed > 0 {
				printMessage(fmt.Sprintf("Run 'testforge-cli report --execution %s --integration <id>' to file the failures.", resp.ExecutionID))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID from analyze (required)")
	cmd.MarkFlagRequired("session")
	cmd.Flags().IntVar(&limit, "limit", 0, "Execute at most N test cases (0 executes all)")
	return cmd
}
