package mcptools

import (
	"context"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// StartSprintTool handles the start_sprint MCP tool.
type StartSprintTool struct {
	sprints *service.SprintService
}

func NewStartSprintTool(sprints *service.SprintService) *StartSprintTool {
	return &StartSprintTool{sprints: sprints}
}

func (t *StartSprintTool) Definition() mcp.Tool {
	return mcp.NewTool("start_sprint",
		mcp.WithDescription("Start a focus sprint on a bucket. Any running sprint is stopped first."),
		mcp.WithString("bucket",
			mcp.Required(),
			mcp.Description("Bucket to focus on"),
			mcp.Enum(db.Buckets...),
		),
	)
}

func (t *StartSprintTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bucket := req.GetString("bucket", "")
	if bucket == "" {
		return mcp.NewToolResultError("'bucket' is required"), nil
	}

	sprint, err := t.sprints.Start(ctx, service.StartSprintInput{Bucket: bucket})
	if err != nil {
		return errorResult("start sprint", err), nil
	}
	return jsonResult(sprint)
}

// StartStructuredSprintTool handles the start_structured_sprint MCP tool.
type StartStructuredSprintTool struct {
	sprints *service.SprintService
}

func NewStartStructuredSprintTool(sprints *service.SprintService) *StartStructuredSprintTool {
	return &StartStructuredSprintTool{sprints: sprints}
}

func (t *StartStructuredSprintTool) Definition() mcp.Tool {
	return mcp.NewTool("start_structured_sprint",
		mcp.WithDescription(
			"Start a sprint with a target length, a goal and planned tasks. "+
				"Without task_ids the best five pending tasks in the bucket are picked.",
		),
		mcp.WithString("bucket",
			mcp.Required(),
			mcp.Description("Bucket to focus on"),
			mcp.Enum(db.Buckets...),
		),
		mcp.WithArray("task_ids",
			mcp.Description("Tasks to plan, in order"),
			numberItems(),
		),
		mcp.WithNumber("target_minutes",
			mcp.Description("Sprint length in minutes (default: 45)"),
			mcp.DefaultNumber(service.DefaultStructuredTarget),
		),
		mcp.WithString("goal",
			mcp.Description("What this sprint should achieve"),
		),
	)
}

func (t *StartStructuredSprintTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bucket := req.GetString("bucket", "")
	if bucket == "" {
		return mcp.NewToolResultError("'bucket' is required"), nil
	}
	target := intArg(req, "target_minutes", service.DefaultStructuredTarget)

	sprint, err := t.sprints.Start(ctx, service.StartSprintInput{
		Bucket:        bucket,
		TaskIDs:       uintSliceArg(req, "task_ids"),
		TargetMinutes: &target,
		Goal:          req.GetString("goal", ""),
	})
	if err != nil {
		return errorResult("start sprint", err), nil
	}
	return jsonResult(sprint)
}

// StopSprintTool handles the stop_sprint MCP tool.
type StopSprintTool struct {
	sprints *service.SprintService
}

func NewStopSprintTool(sprints *service.SprintService) *StopSprintTool {
	return &StopSprintTool{sprints: sprints}
}

func (t *StopSprintTool) Definition() mcp.Tool {
	return mcp.NewTool("stop_sprint",
		mcp.WithDescription("Stop the running sprint and record its duration."),
	)
}

func (t *StopSprintTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sprint, err := t.sprints.Stop(ctx)
	if err != nil {
		return errorResult("stop sprint", err), nil
	}
	return jsonResult(sprint)
}

// GetActiveSprintTool handles the get_active_sprint MCP tool.
type GetActiveSprintTool struct {
	sprints *service.SprintService
}

func NewGetActiveSprintTool(sprints *service.SprintService) *GetActiveSprintTool {
	return &GetActiveSprintTool{sprints: sprints}
}

func (t *GetActiveSprintTool) Definition() mcp.Tool {
	return mcp.NewTool("get_active_sprint",
		mcp.WithDescription("Show the running sprint with elapsed seconds."),
	)
}

func (t *GetActiveSprintTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := t.sprints.Active(ctx)
	if err != nil {
		return errorResult("get active sprint", err), nil
	}
	if status == nil {
		return mcp.NewToolResultText("No active sprint"), nil
	}
	return jsonResult(status)
}
