package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newProvidersCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List AI providers and their availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			var body []byte
			if refresh {
				body, err = client.Post("/api/v1/providers/refresh", nil)
			} else {
				body, err = client.Get("/api/v1/providers", nil)
			}
			if err != nil {
				return err
			}

			if flagJSON {
				var raw json.RawMessage
				json.Unmarshal(body, &raw)
				printJSON(raw)
				return nil
			}

			var resp ProvidersResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			headers := []string{"KEY", "NAME", "MODEL", "AVAILABLE"}
			var rows [][]string
			for _, p := range resp.Providers {
				key := p.Key
				if key == resp.Default {
					key += " (default)"
				}
				available := "no"
				if p.Available {
					available = "yes"
				}
				rows = append(rows, []string{key, p.Name, p.Model, available})
			}
			printTable(headers, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Re-check provider availability before listing")
	return cmd
}
