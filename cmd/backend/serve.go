package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/gunitk/testforge/analyzer"
	"github.com/gunitk/testforge/cmd/backend/handlers"
	"github.com/gunitk/testforge/database"
	"github.com/gunitk/testforge/executor"
	"github.com/gunitk/testforge/generation"
	"github.com/gunitk/testforge/integration"
	"github.com/gunitk/testforge/issuetracker/clients"
	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/provider"
	"github.com/gunitk/testforge/session"
	"github.com/gunitk/testforge/storage"
)

var configFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServer,
}

func init() {
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log := logger.NewLogrusLogger(cfg.Log.Level)
	log.Info(ctx, "starting server", map[string]interface{}{
		"version": Version,
		"commit":  Commit,
		"date":    BuildDate,
	})

	// Connect to database
	db, err := database.Connect(databaseConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	log.Info(ctx, "database connected", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Database,
	})

	// Initialize stores
	suiteStore := generation.NewMySQLStore(db, log)
	executionStore := executor.NewMySQLStore(db, log)
	integrationStore := integration.NewMySQLStore(db, log)

	// Initialize artifact storage
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

	// Initialize AI providers
	providerManager, err := buildProviderManager(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize providers: %w", err)
	}

	// Initialize analysis and generation services
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

	// Initialize the execution service
	runner := executor.NewService(executionStore, artifacts, rodDriverFactory(cfg, log), executor.ServiceConfig{
		MaxSessions:          cfg.Executor.MaxSessions,
		StepTimeout:          cfg.Executor.StepTimeout,
		PerformanceThreshold: cfg.Executor.PerformanceThreshold,
	}, log)

	// Initialize session manager
	sessionManager := session.NewManager(cfg.Session.Duration, log)
	sessionManager.StartCleanup(5 * time.Minute)
	defer sessionManager.StopCleanup()

	cookies := session.NewCodec(cfg.Session.CookieSecret, cfg.Session.CookieName, cfg.Session.Secure)

	log.Info(ctx, "session manager initialized", map[string]interface{}{
		"duration": cfg.Session.Duration.String(),
	})

	// Initialize issue reporting
	encryptionKey := integration.DeriveKey(cfg.Integrations.EncryptionPassphrase)
	reporter := integration.NewReporter(integrationStore, clients.Factory{}, encryptionKey, log)

	// Setup router
	router := mux.NewRouter()

	// Health check endpoint (public)
	router.HandleFunc("/health", handlers.HealthHandler).Methods("GET")

	analyzeHandler := handlers.NewAnalyzeHandler(appAnalyzer, sessionManager, cookies, log)
	sessionHandler := handlers.NewSessionHandler(sessionManager, cookies, log)
	providerHandler := handlers.NewProviderHandler(providerManager, log)
	generateHandler := handlers.NewGenerateHandler(sessionManager, cookies, coordinator, log)
	executeHandler := handlers.NewExecuteHandler(sessionManager, cookies, suiteStore, runner, log)
	downloadHandler := handlers.NewDownloadHandler(sessionManager, cookies, artifacts, log)
	executionHandler := handlers.NewExecutionHandler(executionStore, reporter, log)
	integrationHandler := handlers.NewIntegrationHandler(integrationStore, clients.Factory{}, encryptionKey, log)

	requestLogger := handlers.NewRequestLogger(log)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(requestLogger.Handler)

	apiRouter.HandleFunc("/analyze", analyzeHandler.Analyze).Methods("POST")

	apiRouter.HandleFunc("/sessions/{sessionID}", sessionHandler.GetByID).Methods("GET")
	apiRouter.HandleFunc("/sessions/{sessionID}/generate", generateHandler.Generate).Methods("POST")
	apiRouter.HandleFunc("/sessions/{sessionID}/execute", executeHandler.Execute).Methods("POST")
	apiRouter.HandleFunc("/sessions/{sessionID}/download/tests", downloadHandler.Tests).Methods("GET")
	apiRouter.HandleFunc("/sessions/{sessionID}/download/execution", downloadHandler.Execution).Methods("GET")

	// Cookie-identified aliases for browser clients.
	apiRouter.HandleFunc("/session", sessionHandler.GetByID).Methods("GET")
	apiRouter.HandleFunc("/generate", generateHandler.Generate).Methods("POST")
	apiRouter.HandleFunc("/execute", executeHandler.Execute).Methods("POST")
	apiRouter.HandleFunc("/download/tests", downloadHandler.Tests).Methods("GET")
	apiRouter.HandleFunc("/download/execution", downloadHandler.Execution).Methods("GET")

	apiRouter.HandleFunc("/providers", providerHandler.List).Methods("GET")
	apiRouter.HandleFunc("/providers/refresh", providerHandler.Refresh).Methods("POST")

	apiRouter.HandleFunc("/executions/{executionID}", executionHandler.GetByID).Methods("GET")
	apiRouter.HandleFunc("/executions/{executionID}/report", executionHandler.Report).Methods("POST")

	apiRouter.HandleFunc("/integrations", integrationHandler.List).Methods("GET")
	apiRouter.HandleFunc("/integrations", integrationHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/integrations/{integrationID}", integrationHandler.Delete).Methods("DELETE")

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info(ctx, "server listening", map[string]interface{}{
			"address": addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down server", nil)

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info(ctx, "server stopped", nil)
	return nil
}

func databaseConfig(cfg *Config) database.Config {
	return database.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	}
}

// buildProviderManager assembles every configured provider in fallback
// order. Providers without credentials stay configured but unavailable;
// Bedrock participates only when enabled.
func buildProviderManager(cfg *Config, log logger.Logger) (*provider.Manager, error) {
	providers := []provider.Provider{
		provider.NewAnthropicProvider(provider.AnthropicConfig{
			APIKey:  cfg.Providers.AnthropicAPIKey,
			Model:   cfg.Providers.AnthropicModel,
			Timeout: cfg.Providers.CallTimeout,
		}, log),
		provider.NewGeminiProvider(provider.GeminiConfig{
			APIKey:  cfg.Providers.GeminiAPIKey,
			Model:   cfg.Providers.GeminiModel,
			Timeout: cfg.Providers.CallTimeout,
		}, log),
	}

	if cfg.Providers.BedrockEnabled {
		bedrock, err := provider.NewBedrockProvider(provider.BedrockConfig{
			Enabled: true,
			Region:  cfg.Providers.BedrockRegion,
			Model:   cfg.Providers.BedrockModel,
			Timeout: cfg.Providers.CallTimeout,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize bedrock provider: %w", err)
		}
		providers = append(providers, bedrock)
	}

	var opts []provider.ManagerOption
	if cfg.Providers.LiveProbe {
		opts = append(opts, provider.WithLiveProbe())
	}

	return provider.NewManager(providers, cfg.Providers.Default, log, opts...), nil
}

// rodDriverFactory launches a fresh headless browser per execution batch.
func rodDriverFactory(cfg *Config, log logger.Logger) executor.DriverFactory {
	return func() (executor.Driver, error) {
		return executor.NewRodDriver(executor.DriverConfig{
			Headless:    cfg.Analyzer.Headless,
			PageTimeout: cfg.Analyzer.PageLoadTimeout,
		}, log)
	}
}
