package mcptools

import (
	"context"
	"log"
	"net/http"

	"github.com/kaizenflow/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ServerName identifies the engine to MCP clients.
const ServerName = "kaizen-flow"

const instructions = "Kaizen Flow tracks tasks in energy buckets, timed focus sprints and post-sprint reflections. " +
	"Start with get_state, then plan_day in the morning, get_recommendation when unsure what to do next, " +
	"start_structured_sprint to focus, log_distraction for interruptions and create_kaizen_log after each sprint."

// Tool is one MCP tool handler.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Tools builds every tool over the engine services.
func Tools(engine *service.Engine) []Tool {
	return []Tool{
		NewGetStateTool(engine.State),
		NewPlanDayTool(engine.Planner),
		NewLogDistractionTool(engine.Distractions),
		NewSummarizeTool(engine.Summaries),
		NewGetRecommendationTool(engine.Recommendations),
		NewStartStructuredSprintTool(engine.Sprints),
		NewStartSprintTool(engine.Sprints),
		NewStopSprintTool(engine.Sprints),
		NewGetActiveSprintTool(engine.Sprints),
		NewListTasksTool(engine.Tasks),
		NewCreateTaskTool(engine.Tasks),
		NewUpdateTaskTool(engine.Tasks),
		NewCompleteTaskTool(engine.Tasks),
		NewDeleteTaskTool(engine.Tasks),
		NewCreateKaizenLogTool(engine.KaizenLogs),
		NewGetHealthTool(engine.DB),
	}
}

// NewServer creates the MCP server with every tool registered.
func NewServer(engine *service.Engine) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	tools := Tools(engine)
	for _, tool := range tools {
		s.AddTool(tool.Definition(), tool.Handle)
	}
	log.Printf("[MCP] %s %s ready with %d tools", ServerName, Version, len(tools))
	return s
}

// NewHTTPHandler serves s over streamable HTTP for mounting at /mcp.
func NewHTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s)
}

// ServeStdio runs s on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
