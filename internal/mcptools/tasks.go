package mcptools

import (
	"context"
	"fmt"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// ListTasksTool handles the list_tasks MCP tool.
type ListTasksTool struct {
	tasks *service.TaskService
}

func NewListTasksTool(tasks *service.TaskService) *ListTasksTool {
	return &ListTasksTool{tasks: tasks}
}

func (t *ListTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks ordered by bucket and manual order. Completed tasks are hidden unless show_completed is true."),
		mcp.WithString("bucket",
			mcp.Description("Only tasks in this bucket"),
			mcp.Enum(db.Buckets...),
		),
		mcp.WithBoolean("show_completed",
			mcp.Description("Include completed tasks (default: false)"),
		),
		mcp.WithString("source",
			mcp.Description("Only tasks captured from this source"),
			mcp.Enum(db.TaskSources...),
		),
		mcp.WithString("search",
			mcp.Description("Substring to match in titles"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of tasks to return"),
		),
	)
}

func (t *ListTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := service.TaskFilter{
		Source: req.GetString("source", ""),
		Search: req.GetString("search", ""),
		Limit:  intArg(req, "limit", 0),
	}
	if bucket := req.GetString("bucket", ""); bucket != "" {
		filter.Buckets = []string{bucket}
	}
	if !boolArg(req, "show_completed", false) {
		pending := false
		filter.Completed = &pending
	}

	tasks, err := t.tasks.List(ctx, filter)
	if err != nil {
		return errorResult("list tasks", err), nil
	}
	return jsonResult(tasks)
}

// CreateTaskTool handles the create_task MCP tool.
type CreateTaskTool struct {
	tasks *service.TaskService
}

func NewCreateTaskTool(tasks *service.TaskService) *CreateTaskTool {
	return &CreateTaskTool{tasks: tasks}
}

func (t *CreateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("create_task",
		mcp.WithDescription("Create a task. Tasks created by an agent are tagged with source 'agent' unless another source is given."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title"),
		),
		mcp.WithString("bucket",
			mcp.Description("Bucket (default: unsorted)"),
			mcp.Enum(db.Buckets...),
		),
		mcp.WithNumber("estimated_duration",
			mcp.Description("Estimated minutes"),
		),
		mcp.WithString("energy_level",
			mcp.Description("Energy the task needs"),
			mcp.Enum(db.EnergyLevels...),
		),
		mcp.WithString("priority_type",
			mcp.Description("fire = urgent, bolt = quick win, turtle = slow burn"),
			mcp.Enum(db.PriorityTypes...),
		),
		mcp.WithNumber("dopamine_score",
			mcp.Description("How rewarding the task feels, 0-3"),
		),
		mcp.WithString("friction_level",
			mcp.Description("How hard it is to start"),
			mcp.Enum(db.EnergyLevels...),
		),
		mcp.WithString("environment",
			mcp.Description("Where the task can be done"),
		),
		mcp.WithString("source",
			mcp.Description("Capture source (default: agent)"),
			mcp.Enum(db.TaskSources...),
		),
		mcp.WithArray("tags",
			mcp.Description("Free-form tags"),
			stringItems(),
		),
		mcp.WithBoolean("is_daily_highlight",
			mcp.Description("Make this the single daily highlight"),
		),
	)
}

func (t *CreateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	task, err := t.tasks.Create(ctx, service.TaskInput{
		Title:             title,
		Bucket:            req.GetString("bucket", ""),
		EstimatedDuration: optionalIntArg(req, "estimated_duration"),
		EnergyLevel:       req.GetString("energy_level", ""),
		PriorityType:      req.GetString("priority_type", ""),
		DopamineScore:     optionalIntArg(req, "dopamine_score"),
		FrictionLevel:     req.GetString("friction_level", ""),
		Environment:       req.GetString("environment", ""),
		Source:            req.GetString("source", db.SourceAgent),
		Tags:              stringSliceArg(req, "tags"),
		IsDailyHighlight:  boolArg(req, "is_daily_highlight", false),
	})
	if err != nil {
		return errorResult("create task", err), nil
	}
	return jsonResult(task)
}

// UpdateTaskTool handles the update_task MCP tool. Only the arguments that
// are present are written.
type UpdateTaskTool struct {
	tasks *service.TaskService
}

func NewUpdateTaskTool(tasks *service.TaskService) *UpdateTaskTool {
	return &UpdateTaskTool{tasks: tasks}
}

func (t *UpdateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("update_task",
		mcp.WithDescription("Update selected fields of a task. Pass null for estimated_duration or dopamine_score to clear them."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("bucket", mcp.Description("New bucket"), mcp.Enum(db.Buckets...)),
		mcp.WithBoolean("is_daily_highlight", mcp.Description("Make this the daily highlight")),
		mcp.WithNumber("sort_order", mcp.Description("Display position within the bucket")),
		mcp.WithNumber("estimated_duration", mcp.Description("Estimated minutes")),
		mcp.WithString("energy_level", mcp.Description("Energy the task needs"), mcp.Enum(db.EnergyLevels...)),
		mcp.WithString("priority_type", mcp.Description("fire, bolt or turtle"), mcp.Enum(db.PriorityTypes...)),
		mcp.WithNumber("dopamine_score", mcp.Description("How rewarding the task feels, 0-3")),
		mcp.WithString("friction_level", mcp.Description("How hard it is to start"), mcp.Enum(db.EnergyLevels...)),
		mcp.WithString("environment", mcp.Description("Where the task can be done")),
		mcp.WithArray("tags", mcp.Description("Replaces all tags"), stringItems()),
	)
}

func (t *UpdateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := idArg(req, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var update service.TaskUpdate
	if hasArg(req, "title") {
		update.Title = service.Some(req.GetString("title", ""))
	}
	if hasArg(req, "bucket") {
		update.Bucket = service.Some(req.GetString("bucket", ""))
	}
	if hasArg(req, "is_daily_highlight") {
		update.IsDailyHighlight = service.Some(boolArg(req, "is_daily_highlight", false))
	}
	if hasArg(req, "sort_order") {
		update.SortOrder = service.Some(intArg(req, "sort_order", 0))
	}
	if hasArg(req, "estimated_duration") {
		update.EstimatedDuration = service.Some(optionalIntArg(req, "estimated_duration"))
	}
	if hasArg(req, "energy_level") {
		update.EnergyLevel = service.Some(req.GetString("energy_level", ""))
	}
	if hasArg(req, "priority_type") {
		update.PriorityType = service.Some(req.GetString("priority_type", ""))
	}
	if hasArg(req, "dopamine_score") {
		update.DopamineScore = service.Some(optionalIntArg(req, "dopamine_score"))
	}
	if hasArg(req, "friction_level") {
		update.FrictionLevel = service.Some(req.GetString("friction_level", ""))
	}
	if hasArg(req, "environment") {
		update.Environment = service.Some(req.GetString("environment", ""))
	}
	if hasArg(req, "tags") {
		update.Tags = service.Some(stringSliceArg(req, "tags"))
	}

	task, err := t.tasks.Update(ctx, id, update)
	if err != nil {
		return errorResult("update task", err), nil
	}
	return jsonResult(task)
}

// CompleteTaskTool handles the complete_task MCP tool.
type CompleteTaskTool struct {
	tasks *service.TaskService
}

func NewCompleteTaskTool(tasks *service.TaskService) *CompleteTaskTool {
	return &CompleteTaskTool{tasks: tasks}
}

func (t *CompleteTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task completed, or reopen it with is_completed=false."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
		mcp.WithBoolean("is_completed",
			mcp.Description("true = completed (default), false = reopen"),
		),
	)
}

func (t *CompleteTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := idArg(req, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task, err := t.tasks.SetCompleted(ctx, id, boolArg(req, "is_completed", true))
	if err != nil {
		return errorResult("complete task", err), nil
	}
	return jsonResult(task)
}

// DeleteTaskTool handles the delete_task MCP tool.
type DeleteTaskTool struct {
	tasks *service.TaskService
}

func NewDeleteTaskTool(tasks *service.TaskService) *DeleteTaskTool {
	return &DeleteTaskTool{tasks: tasks}
}

func (t *DeleteTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_task",
		mcp.WithDescription("Permanently delete a task."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
	)
}

func (t *DeleteTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := idArg(req, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.tasks.Delete(ctx, id); err != nil {
		return errorResult("delete task", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task %d deleted", id)), nil
}
