package mcptools

import (
	"context"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// GetStateTool handles the get_state MCP tool.
type GetStateTool struct {
	state *service.StateService
}

func NewGetStateTool(state *service.StateService) *GetStateTool {
	return &GetStateTool{state: state}
}

func (t *GetStateTool) Definition() mcp.Tool {
	return mcp.NewTool("get_state",
		mcp.WithDescription(
			"Read the full productivity snapshot: active sprint, energy for the current hour, "+
				"today's totals, streaks, pending work and suggestions. Call this before deciding what to do.",
		),
	)
}

func (t *GetStateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := t.state.State(ctx)
	if err != nil {
		return errorResult("get state", err), nil
	}
	return jsonResult(state)
}

// PlanDayTool handles the plan_day MCP tool.
type PlanDayTool struct {
	planner *service.PlannerService
}

func NewPlanDayTool(planner *service.PlannerService) *PlanDayTool {
	return &PlanDayTool{planner: planner}
}

func (t *PlanDayTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_day",
		mcp.WithDescription("Schedule pending tasks into morning, midday and late-afternoon blocks and save today's plan."),
		mcp.WithArray("goals",
			mcp.Description("Up to 3 goals for the day"),
			stringItems(),
		),
		mcp.WithNumber("available_minutes",
			mcp.Description("Minutes available today (default: 480)"),
		),
		mcp.WithString("energy_profile",
			mcp.Description("Expected energy today (default: medium). Low skips the late-afternoon block."),
			mcp.Enum(db.EnergyLevels...),
		),
		mcp.WithArray("must_do_task_ids",
			mcp.Description("Tasks that must go into the morning block"),
			numberItems(),
		),
	)
}

func (t *PlanDayTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan, err := t.planner.PlanDay(ctx, service.PlanDayInput{
		Goals:            stringSliceArg(req, "goals"),
		AvailableMinutes: intArg(req, "available_minutes", 0),
		EnergyProfile:    req.GetString("energy_profile", ""),
		MustDoTaskIDs:    uintSliceArg(req, "must_do_task_ids"),
	})
	if err != nil {
		return errorResult("plan day", err), nil
	}
	return jsonResult(plan)
}

// LogDistractionTool handles the log_distraction MCP tool.
type LogDistractionTool struct {
	distractions *service.DistractionService
}

func NewLogDistractionTool(distractions *service.DistractionService) *LogDistractionTool {
	return &LogDistractionTool{distractions: distractions}
}

func (t *LogDistractionTool) Definition() mcp.Tool {
	return mcp.NewTool("log_distraction",
		mcp.WithDescription("Record an interruption against the running sprint and optionally park it as a task."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("What interrupted"),
			mcp.Enum(db.DistractionSources...),
		),
		mcp.WithString("description",
			mcp.Description("Short description of the distraction"),
		),
		mcp.WithBoolean("capture_as_task",
			mcp.Description("Also create a parking-lot task (default: false)"),
		),
		mcp.WithString("task_title",
			mcp.Description("Title for the parked task (default: the description)"),
		),
	)
}

func (t *LogDistractionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := t.distractions.Capture(ctx, service.CaptureInput{
		Source:        req.GetString("source", ""),
		Description:   req.GetString("description", ""),
		CaptureAsTask: boolArg(req, "capture_as_task", false),
		TaskTitle:     req.GetString("task_title", ""),
	})
	if err != nil {
		return errorResult("log distraction", err), nil
	}
	return jsonResult(result)
}

// SummarizeTool handles the summarize MCP tool.
type SummarizeTool struct {
	summaries *service.SummaryService
}

func NewSummarizeTool(summaries *service.SummaryService) *SummarizeTool {
	return &SummarizeTool{summaries: summaries}
}

func (t *SummarizeTool) Definition() mcp.Tool {
	return mcp.NewTool("summarize",
		mcp.WithDescription("Summarize focus time, moods, distractions and estimation accuracy over a period."),
		mcp.WithString("period",
			mcp.Description("Period to summarize (default: today)"),
			mcp.Enum(service.Periods...),
		),
	)
}

func (t *SummarizeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := t.summaries.Summarize(ctx, req.GetString("period", service.PeriodToday))
	if err != nil {
		return errorResult("summarize", err), nil
	}
	return jsonResult(summary)
}

// GetRecommendationTool handles the get_recommendation MCP tool.
type GetRecommendationTool struct {
	recommendations *service.RecommendationService
}

func NewGetRecommendationTool(recommendations *service.RecommendationService) *GetRecommendationTool {
	return &GetRecommendationTool{recommendations: recommendations}
}

func (t *GetRecommendationTool) Definition() mcp.Tool {
	return mcp.NewTool("get_recommendation",
		mcp.WithDescription("Suggest the next action and, when it is a sprint, the bucket and tasks to start with."),
		mcp.WithString("energy",
			mcp.Description("Current energy (default: derived from the hour)"),
			mcp.Enum(db.EnergyLevels...),
		),
		mcp.WithNumber("available_minutes",
			mcp.Description("Minutes available right now"),
		),
	)
}

func (t *GetRecommendationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, err := t.recommendations.Recommend(ctx, service.RecommendInput{
		Energy:           req.GetString("energy", ""),
		AvailableMinutes: optionalIntArg(req, "available_minutes"),
	})
	if err != nil {
		return errorResult("get recommendation", err), nil
	}
	return jsonResult(rec)
}
