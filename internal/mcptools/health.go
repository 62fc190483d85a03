package mcptools

import (
	"context"
	"fmt"
	"time"

	"github.com/kaizenflow/internal/db"
	"github.com/mark3labs/mcp-go/mcp"
	"gorm.io/gorm"
)

// GetHealthTool handles the get_health MCP tool.
type GetHealthTool struct {
	db *gorm.DB
}

func NewGetHealthTool(gdb *gorm.DB) *GetHealthTool {
	return &GetHealthTool{db: gdb}
}

func (t *GetHealthTool) Definition() mcp.Tool {
	return mcp.NewTool("get_health",
		mcp.WithDescription("Check that the engine and its store are reachable."),
	)
}

func (t *GetHealthTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := db.Ping(ctx, t.db); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("store unavailable: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
