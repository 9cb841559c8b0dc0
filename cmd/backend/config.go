package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Session      SessionConfig
	Storage      StorageConfig
	Log          LogConfig
	Providers    ProvidersConfig
	Analyzer     AnalyzerConfig
	Generation   GenerationConfig
	Executor     ExecutorConfig
	Integrations IntegrationsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
}

// SessionConfig holds analysis session configuration.
type SessionConfig struct {
	CookieName   string
	CookieSecret string
	Duration     time.Duration
	Secure       bool
}

// StorageConfig holds artifact storage configuration.
type StorageConfig struct {
	Type            string        // "local" or "s3"
	BaseDir         string        // For local: "./artifacts"
	S3Bucket        string        // For S3: bucket name
	S3Region        string        // For S3: AWS region
	S3PresignExpiry time.Duration // Presigned URL expiration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
}

// ProvidersConfig holds AI provider configuration. A provider with no
// credentials is configured but unavailable.
type ProvidersConfig struct {
	Default         string
	LiveProbe       bool
	CallTimeout     time.Duration
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string
	BedrockEnabled  bool
	BedrockRegion   string
	BedrockModel    string
}

// AnalyzerConfig holds application analysis configuration.
type AnalyzerConfig struct {
	Headless        bool
	PageLoadTimeout time.Duration
	ProbeTimeout    time.Duration
	DisableBrowser  bool
}

// GenerationConfig holds test generation configuration.
type GenerationConfig struct {
	// PromptOverrides points at a yaml file of prompt template overrides.
	// Empty disables overrides; the file is hot-reloaded while serving.
	PromptOverrides string
}

// ExecutorConfig holds test execution configuration.
type ExecutorConfig struct {
	MaxSessions          int
	StepTimeout          time.Duration
	PerformanceThreshold time.Duration
}

// IntegrationsConfig holds issue tracker integration configuration.
type IntegrationsConfig struct {
	EncryptionPassphrase string
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("testforge")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "testforge")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("session.cookie_name", "testforge_session")
	v.SetDefault("session.cookie_secret", "change-this-secret-in-production-min-32-chars")
	v.SetDefault("session.duration", "24h")
	v.SetDefault("session.secure", false)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.base_dir", "./artifacts")
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_presign_expiry", "15m")

	v.SetDefault("log.level", "info")

	v.SetDefault("providers.default", "claude")
	v.SetDefault("providers.live_probe", false)
	v.SetDefault("providers.call_timeout", "60s")
	v.SetDefault("providers.anthropic_api_key", "")
	v.SetDefault("providers.anthropic_model", "claude-sonnet-4-5-20250514")
	v.SetDefault("providers.gemini_api_key", "")
	v.SetDefault("providers.gemini_model", "gemini-2.0-flash")
	v.SetDefault("providers.bedrock_enabled", false)
	v.SetDefault("providers.bedrock_region", "us-east-1")
	v.SetDefault("providers.bedrock_model", "anthropic.claude-sonnet-4-6")

	v.SetDefault("analyzer.headless", true)
	v.SetDefault("analyzer.page_load_timeout", "30s")
	v.SetDefault("analyzer.probe_timeout", "10s")
	v.SetDefault("analyzer.disable_browser", false)

	v.SetDefault("generation.prompt_overrides", "")

	v.SetDefault("executor.max_sessions", 2)
	v.SetDefault("executor.step_timeout", "10s")
	v.SetDefault("executor.performance_threshold", "5s")

	v.SetDefault("integrations.encryption_passphrase", "change-this-passphrase-in-production")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; using defaults
	}

	// Parse configuration
	var config Config

	config.Server.Host = v.GetString("server.host")
	config.Server.Port = v.GetInt("server.port")
	config.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	config.Server.WriteTimeout = v.GetDuration("server.write_timeout")

	config.Database.Host = v.GetString("database.host")
	config.Database.Port = v.GetInt("database.port")
	config.Database.User = v.GetString("database.user")
	config.Database.Password = v.GetString("database.password")
	config.Database.Database = v.GetString("database.database")
	config.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	config.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")

	config.Session.CookieName = v.GetString("session.cookie_name")
	config.Session.CookieSecret = v.GetString("session.cookie_secret")
	config.Session.Duration = v.GetDuration("session.duration")
	config.Session.Secure = v.GetBool("session.secure")

	config.Storage.Type = v.GetString("storage.type")
	config.Storage.BaseDir = v.GetString("storage.base_dir")
	config.Storage.S3Bucket = v.GetString("storage.s3_bucket")
	config.Storage.S3Region = v.GetString("storage.s3_region")
	config.Storage.S3PresignExpiry = v.GetDuration("storage.s3_presign_expiry")

	config.Log.Level = v.GetString("log.level")

	config.Providers.Default = v.GetString("providers.default")
	config.Providers.LiveProbe = v.GetBool("providers.live_probe")
	config.Providers.CallTimeout = v.GetDuration("providers.call_timeout")
	config.Providers.AnthropicAPIKey = v.GetString("providers.anthropic_api_key")
	config.Providers.AnthropicModel = v.GetString("providers.anthropic_model")
	config.Providers.GeminiAPIKey = v.GetString("providers.gemini_api_key")
	config.Providers.GeminiModel = v.GetString("providers.gemini_model")
	config.Providers.BedrockEnabled = v.GetBool("providers.bedrock_enabled")
	config.Providers.BedrockRegion = v.GetString("providers.bedrock_region")
	config.Providers.BedrockModel = v.GetString("providers.bedrock_model")

	config.Analyzer.Headless = v.GetBool("analyzer.headless")
	config.Analyzer.PageLoadTimeout = v.GetDuration("analyzer.page_load_timeout")
	config.Analyzer.ProbeTimeout = v.GetDuration("analyzer.probe_timeout")
	config.Analyzer.DisableBrowser = v.GetBool("analyzer.disable_browser")

	config.Generation.PromptOverrides = v.GetString("generation.prompt_overrides")

	config.Executor.MaxSessions = v.GetInt("executor.max_sessions")
	config.Executor.StepTimeout = v.GetDuration("executor.step_timeout")
	config.Executor.PerformanceThreshold = v.GetDuration("executor.performance_threshold")

	config.Integrations.EncryptionPassphrase = v.GetString("integrations.encryption_passphrase")

	return &config, nil
}
