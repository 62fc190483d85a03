package service

import (
	"time"

	"github.com/kaizenflow/internal/events"
	"gorm.io/gorm"
)

// Engine wires every service over one store and one publisher. Transports
// (REST, MCP) share a single Engine.
type Engine struct {
	DB              *gorm.DB
	Tasks           *TaskService
	Sprints         *SprintService
	KaizenLogs      *KaizenLogService
	Planner         *PlannerService
	Recommendations *RecommendationService
	Distractions    *DistractionService
	State           *StateService
	Summaries       *SummaryService
	Streaks         *StreakService
}

func NewEngine(gdb *gorm.DB, bus events.Publisher) *Engine {
	sprints := NewSprintService(gdb, bus)
	streaks := NewStreakService(gdb)
	return &Engine{
		DB:              gdb,
		Tasks:           NewTaskService(gdb, bus),
		Sprints:         sprints,
		KaizenLogs:      NewKaizenLogService(gdb, bus),
		Planner:         NewPlannerService(gdb, bus),
		Recommendations: NewRecommendationService(gdb, sprints),
		Distractions:    NewDistractionService(gdb, bus),
		State:           NewStateService(gdb, sprints, streaks),
		Summaries:       NewSummaryService(gdb),
		Streaks:         streaks,
	}
}

// SetClock points every time-dependent service at now.
func (e *Engine) SetClock(now func() time.Time) {
	e.Tasks.SetClock(now)
	e.Sprints.SetClock(now)
	e.KaizenLogs.SetClock(now)
	e.Planner.SetClock(now)
	e.Recommendations.SetClock(now)
	e.Distractions.SetClock(now)
	e.State.SetClock(now)
	e.Summaries.SetClock(now)
}
