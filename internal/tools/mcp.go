package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const serverName = "deploy-planner"

// NewMCPServer exposes every registry operation as an MCP tool
func NewMCPServer(registry *Registry, version string, logger *zap.Logger) *server.MCPServer {
	mcpServer := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	for _, op := range Operations() {
		mcpServer.AddTool(BuildTool(op), toolHandler(registry, op.Name))
		logger.Debug("Registered tool", zap.String("name", op.Name))
	}
	return mcpServer
}

// ServeStdio blocks serving MCP requests on stdin/stdout.
func ServeStdio(mcpServer *server.MCPServer) error {
	if err := server.ServeStdio(mcpServer); err != nil {
		return fmt.Errorf("mcp stdio server failed: %w", err)
	}
	return nil
}

// BuildTool creates the MCP tool definition of an operation
func BuildTool(op OperationConfig) mcp.Tool {
	options := []mcp.ToolOption{mcp.WithDescription(op.Description)}
	for _, param := range op.Params {
		props := []mcp.PropertyOption{mcp.Description(param.Description)}
		if param.Required {
			props = append(props, mcp.Required())
		}
		switch param.Type {
		case "boolean":
			options = append(options, mcp.WithBoolean(param.Name, props...))
		case "number":
			options = append(options, mcp.WithNumber(param.Name, props...))
		case "object":
			options = append(options, mcp.WithObject(param.Name, props...))
		default:
			options = append(options, mcp.WithString(param.Name, props...))
		}
	}
	return mcp.NewTool(op.Name, options...)
}

func toolHandler(registry *Registry, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := registry.Invoke(ctx, name, req.GetArguments())
		payload, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		if !result.Success {
			return mcp.NewToolResultError(string(payload)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}
