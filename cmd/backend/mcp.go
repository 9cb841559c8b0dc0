package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gunitk/testforge/analyzer"
	"github.com/gunitk/testforge/database"
	"github.com/gunitk/testforge/executor"
	"github.com/gunitk/testforge/generation"
	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/mcpserver"
	"github.com/gunitk/testforge/session"
	"github.com/gunitk/testforge/storage"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP tool surface on stdio",
	Long:  `Exposes analysis, generation and execution as Model Context Protocol tools so AI assistants can drive test runs.`,
	RunE:  runMCP,
}

func init() {
	mcpCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// stdout carries the MCP protocol stream; logs go to stderr.
	log := logger.NewLogrusLoggerWithOutput(cfg.Log.Level, os.Stderr)
	log.Info(ctx, "starting MCP server", map[string]interface{}{
		"version": Version,
	})

	db, err := database.Connect(databaseConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	suiteStore := generation.NewMySQLStore(db, log)
	executionStore := executor.NewMySQLStore(db, log)

	artifacts, err := storage.NewBlobStorage(storage.Config{
		Type:          cfg.Storage.Type,
		BaseDir:       cfg.Storage.BaseDir,
		Bucket:        cfg.Storage.S3Bucket,
		Region:        cfg.Storage.S3Region,
		PresignExpiry: cfg.Storage.S3PresignExpiry,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize artifact storage: %w", err)
	}

	providerManager, err := buildProviderManager(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize providers: %w", err)
	}

	appAnalyzer := analyzer.New(analyzer.Config{
		Headless:        cfg.Analyzer.Headless,
		PageLoadTimeout: cfg.Analyzer.PageLoadTimeout,
		ProbeTimeout:    cfg.Analyzer.ProbeTimeout,
		DisableBrowser:  cfg.Analyzer.DisableBrowser,
	}, log)

	builder := generation.NewBuilder(log)
	if cfg.Generation.PromptOverrides != "" {
		if err := builder.LoadOverrides(ctx, cfg.Generation.PromptOverrides); err != nil {
			return fmt.Errorf("failed to load prompt overrides: %w", err)
		}
		if err := builder.WatchOverrides(ctx, cfg.Generation.PromptOverrides); err != nil {
			return fmt.Errorf("failed to watch prompt overrides: %w", err)
		}
	}
	coordinator := generation.NewCoordinator(providerManager, builder, suiteStore, artifacts, log)

	runner := executor.NewService(executionStore, artifacts, rodDriverFactory(cfg, log), executor.ServiceConfig{
		MaxSessions:          cfg.Executor.MaxSessions,
		StepTimeout:          cfg.Executor.StepTimeout,
		PerformanceThreshold: cfg.Executor.PerformanceThreshold,
	}, log)

	sessionManager := session.NewManager(cfg.Session.Duration, log)
	sessionManager.StartCleanup(5 * time.Minute)
	defer sessionManager.StopCleanup()

	srv := mcpserver.New(Version, mcpserver.Deps{
		Analyzer:   appAnalyzer,
		Sessions:   sessionManager,
		Providers:  providerManager,
		Generator:  coordinator,
		Suites:     suiteStore,
		Runner:     runner,
		Executions: executionStore,
		Logger:     log,
	})

	return srv.Start(ctx)
}
