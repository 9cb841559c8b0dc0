package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	flagURL     string
	flagJSON    bool
	flagDebug   bool
	flagTimeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "testforge-cli",
		Short: "CLI for the TestForge backend",
		Long:  "A command-line interface for analyzing web applications, generating AI test cases, executing them against the target, and filing failures with issue trackers.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "API server URL (env: TESTFORGE_URL)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "API call timeout (env: TESTFORGE_TIMEOUT)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("testforge-cli %s (commit: %s, built: %s)\n", Version, Commit, BuildDate)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newProvidersCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newExecuteCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newExecutionsCmd())
	rootCmd.AddCommand(newIntegrationsCmd())
	rootCmd.AddCommand(newReportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
