package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gunitk/testforge/executor"
	"github.com/spf13/cobra"
)

func newExecutionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "executions",
		Short: "Inspect stored test executions",
	}

	cmd.AddCommand(newExecutionsGetCmd())
	return cmd
}

func newExecutionsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get an execution by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			body, err := client.Get(fmt.Sprintf("/api/v1/executions/%s", args[0]), nil)
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var e executor.Execution
			if err := json.Unmarshal(body, &e); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			suiteID := "-"
			if e.SuiteID != nil {
				suiteID = e.SuiteID.String()
			}
			errMsg := "-"
			if e.ErrorMessage != "" {
				errMsg = e.ErrorMessage
			}
			startedAt := "-"
			if e.StartedAt != nil {
				startedAt = e.StartedAt.Format("2006-01-02 15:04:05")
			}
			completedAt := "-"
			if e.CompletedAt != nil {
				completedAt = e.CompletedAt.Format("2006-01-02 15:04:05")
			}

			headers := []string{"FIELD", "VALUE"}
			rows := [][]string{
				{"ID", e.ID.String()},
				{"Session ID", e.SessionID},
				{"Suite ID", suiteID},
				{"Target URL", e.TargetURL},
				{"Status", string(e.Status)},
				{"Total", strconv.Itoa(e.TotalTests)},
				{"Passed", strconv.Itoa(e.PassedCount)},
				{"Failed", strconv.Itoa(e.FailedCount)},
				{"Duration", fmt.Sprintf("%.2fs", e.DurationSeconds)},
				{"Error", errMsg},
				{"Started At", startedAt},
				{"Completed At", completedAt},
			}
			printTable(headers, rows)
			return nil
		},
	}
}
