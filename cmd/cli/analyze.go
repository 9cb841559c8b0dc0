package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze a locally running web application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			s := newSpinner("Analyzing application...")
			body, err := client.Post("/api/v1/analyze", AnalyzeRequest{URL: args[0]})
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

			var resp AnalyzeResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			headers := []string{"FIELD", "VALUE"}
			rows := [][]string{
				{"Session ID", resp.SessionID},
				{"Target Type", string(resp.TargetType)},
			}
			if c := resp.Context; c != nil {
				technologies := strings.Join(c.Technologies, ", ")
				if technologies == "" {
					technologies = "-"
				}
				rows = append(rows,
					[]string{"URL", c.URL},
					[]string{"Title", c.Title},
					[]string{"Forms", strconv.Itoa(len(c.Forms))},
					[]string{"Buttons", strconv.Itoa(len(c.Buttons))},
					[]string{"Links", strconv.Itoa(len(c.Links))},
					[]string{"Technologies", technologies},
				)
			}
			printTable(headers, rows)
			printMessage(fmt.Sprintf("\nRun 'testforge-cli generate --session %s' to generate test cases.", resp.SessionID))
			return nil
		},
	}
}
