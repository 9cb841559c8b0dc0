package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gunitk/testforge/executor"
	"github.com/gunitk/testforge/generation"
	"github.com/gunitk/testforge/target"
	"github.com/gunitk/testforge/testcase"
)

// handleAnalyzeApp analyzes the given URL and opens a session for it. The
// session ID in the result is the handle for the other tools.
func (s *Server) handleAnalyzeApp(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url argument is required"), nil
	}

	appCtx, err := s.analyzer.Analyze(ctx, rawURL)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Analysis failed: %v", err)), nil
	}

	tgt, err := target.Classify(appCtx.URL)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Analysis failed: %v", err)), nil
	}

	sess := s.sessions.Create(appCtx.URL, tgt.Type, appCtx)

	return jsonResult(map[string]interface{}{
		"session_id":  sess.ID,
		"target_type": sess.TargetType,
		"context":     appCtx,
		"report":      appCtx.Report(),
	})
}

func (s *Server) handleListProviders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]interface{}{
		"providers": s.providers.Descriptors(),
		"default":   s.providers.DefaultKey(),
	})
}

func (s *Server) handleGenerateTests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required"), nil
	}

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown session: %s", sessionID)), nil
	}

	var categories []testcase.Category
	if raw, ok := request.GetArguments()["categories"].(string); ok && raw != "" {
		for _, value := range strings.Split(raw, ",") {
			category := testcase.Category(strings.TrimSpace(value))
			if !category.IsValid() {
				return mcp.NewToolResultError(fmt.Sprintf("Unknown category: %s", strings.TrimSpace(value))), nil
			}
			categories = append(categories, category)
		}
	}

	providerKey, _ := request.GetArguments()["provider"].(string)

	result, err := s.generator.GenerateAll(ctx, generation.Request{
		SessionID:  sess.ID,
		TargetURL:  sess.TargetURL,
		Context:    sess.Context,
		Categories: categories,
		Provider:   providerKey,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Generation failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"suite_id":      result.Suite.ID,
		"provider_used": result.ProviderUsed,
		"count":         len(result.Cases),
		"test_cases":    result.Cases,
	})
}

func (s *Server) handleExecuteTests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required"), nil
	}

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown session: %s", sessionID)), nil
	}

	suite, err := s.suites.GetLatestBySession(ctx, sess.ID)
	if err != nil {
		return mcp.NewToolResultError("No test cases to execute: run generate_tests first"), nil
	}

	limit := 0
	if raw, ok := request.GetArguments()["limit"].(float64); ok {
		limit = int(raw)
	}

	execution, err := s.runner.Run(ctx, executor.Request{
		SessionID: sess.ID,
		SuiteID:   &suite.ID,
		TargetURL: sess.TargetURL,
		Cases:     suite.Cases,
		Limit:     limit,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Execution failed: %v", err)), nil
	}

	return jsonResult(execution)
}

func (s *Server) handleGetExecution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawID, err := request.RequireString("execution_id")
	if err != nil {
		return mcp.NewToolResultError("execution_id argument is required"), nil
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return mcp.NewToolResultError("execution_id must be a valid UUID"), nil
	}

	execution, err := s.executions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, executor.ErrExecutionNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Execution not found: %s", rawID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load execution: %v", err)), nil
	}

	return jsonResult(execution)
}

func jsonResult(payload interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
