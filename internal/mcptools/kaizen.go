package mcptools

import (
	"context"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// CreateKaizenLogTool handles the create_kaizen_log MCP tool.
type CreateKaizenLogTool struct {
	logs *service.KaizenLogService
}

func NewCreateKaizenLogTool(logs *service.KaizenLogService) *CreateKaizenLogTool {
	return &CreateKaizenLogTool{logs: logs}
}

func (t *CreateKaizenLogTool) Definition() mcp.Tool {
	return mcp.NewTool("create_kaizen_log",
		mcp.WithDescription(
			"Record a post-sprint reflection. When sprint_id is given the bucket defaults to the sprint's "+
				"and distractions logged during it are counted automatically.",
		),
		mcp.WithString("mood",
			mcp.Required(),
			mcp.Description("How the session felt"),
			mcp.Enum(db.Moods...),
		),
		mcp.WithString("bucket",
			mcp.Description("Bucket worked on (required without sprint_id)"),
			mcp.Enum(db.Buckets...),
		),
		mcp.WithNumber("sprint_id",
			mcp.Description("Sprint this reflection belongs to"),
		),
		mcp.WithNumber("duration_seconds",
			mcp.Description("Time actually spent (default: 0)"),
		),
		mcp.WithNumber("estimated_seconds",
			mcp.Description("Time the work was expected to take"),
		),
		mcp.WithString("notes",
			mcp.Description("Markdown notes"),
		),
		mcp.WithArray("tasks_completed",
			mcp.Description("Titles of tasks finished during the session"),
			stringItems(),
		),
	)
}

func (t *CreateKaizenLogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input := service.KaizenLogInput{
		Bucket:           req.GetString("bucket", ""),
		Mood:             req.GetString("mood", ""),
		DurationSeconds:  intArg(req, "duration_seconds", 0),
		EstimatedSeconds: optionalIntArg(req, "estimated_seconds"),
		Notes:            req.GetString("notes", ""),
		TasksCompleted:   stringSliceArg(req, "tasks_completed"),
	}
	if hasArg(req, "sprint_id") {
		id, err := idArg(req, "sprint_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		input.SprintID = &id
	}

	entry, err := t.logs.Create(ctx, input)
	if err != nil {
		return errorResult("create kaizen log", err), nil
	}
	return jsonResult(entry)
}
