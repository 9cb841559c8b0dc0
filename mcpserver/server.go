// Package mcpserver exposes the analysis, generation and execution pipeline
// as Model Context Protocol tools over stdio, so AI assistants can drive
// test runs directly.
package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gunitk/testforge/analyzer"
	"github.com/gunitk/testforge/executor"
	"github.com/gunitk/testforge/generation"
	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/provider"
	"github.com/gunitk/testforge/session"
)

// Analyzer inspects a target application and builds its context.
type Analyzer interface {
	Analyze(ctx context.Context, rawURL string) (*analyzer.Context, error)
}

// Generator produces a persisted suite of test cases for a session.
type Generator interface {
	GenerateAll(ctx context.Context, req generation.Request) (*generation.Result, error)
}

// Runner executes test cases against a target application.
type Runner interface {
	Run(ctx context.Context, req executor.Request) (*executor.Execution, error)
}

// Deps carries the services the MCP tools are built on.
type Deps struct {
	Analyzer   Analyzer
	Sessions   *session.Manager
	Providers  *provider.Manager
	Generator  Generator
	Suites     generation.Store
	Runner     Runner
	Executions executor.Store
	Logger     logger.Logger
}

// Server serves the tool surface on stdio. Tool handlers mirror the HTTP
// API's validation and return JSON text payloads.
type Server struct {
	analyzer   Analyzer
	sessions   *session.Manager
	providers  *provider.Manager
	generator  Generator
	suites     generation.Store
	runner     Runner
	executions executor.Store
	mcpServer  *server.MCPServer
	logger     logger.Logger
}

// New creates the MCP server and registers its tools.
func New(version string, deps Deps) *Server {
	mcpServer := server.NewMCPServer(
		"testforge",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
	)

	s := &Server{
		analyzer:   deps.Analyzer,
		sessions:   deps.Sessions,
		providers:  deps.Providers,
		generator:  deps.Generator,
		suites:     deps.Suites,
		runner:     deps.Runner,
		executions: deps.Executions,
		mcpServer:  mcpServer,
		logger:     deps.Logger,
	}
	s.registerTools()

	return s
}

// Start serves the MCP protocol on stdin/stdout and blocks until the client
// closes the stream.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info(ctx, "MCP server listening on stdio", nil)
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	analyzeTool := mcp.NewTool("analyze_app",
		mcp.WithDescription("Analyze a locally reachable web application and open a session for it"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL of the web application, e.g. http://localhost:3000"),
		),
	)
	s.mcpServer.AddTool(analyzeTool, s.handleAnalyzeApp)

	listProvidersTool := mcp.NewTool("list_providers",
		mcp.WithDescription("List the configured AI providers and their availability"),
	)
	s.mcpServer.AddTool(listProvidersTool, s.handleListProviders)

	generateTool := mcp.NewTool("generate_tests",
		mcp.WithDescription("Generate test cases for an analyzed session"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session ID returned by analyze_app"),
		),
		mcp.WithString("provider",
			mcp.Description("Provider key to generate with (defaults to the configured default)"),
		),
		mcp.WithString("categories",
			mcp.Description("Comma-separated test categories to generate (defaults to all)"),
		),
	)
	s.mcpServer.AddTool(generateTool, s.handleGenerateTests)

	executeTool := mcp.NewTool("execute_tests",
		mcp.WithDescription("Execute the session's latest generated test cases against its target"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session ID returned by analyze_app"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of cases to execute, highest priority first"),
		),
	)
	s.mcpServer.AddTool(executeTool, s.handleExecuteTests)

	getExecutionTool := mcp.NewTool("get_execution",
		mcp.WithDescription("Get one execution record with its per-case results"),
		mcp.WithString("execution_id",
			mcp.Required(),
			mcp.Description("Execution ID returned by execute_tests"),
		),
	)
	s.mcpServer.AddTool(getExecutionTool, s.handleGetExecution)
}
