package handler

import (
	"github.com/kaizenflow/internal/events"
	"github.com/kaizenflow/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db              *gorm.DB
	bus             *events.Bus
	tasks           *service.TaskService
	sprints         *service.SprintService
	kaizenLogs      *service.KaizenLogService
	planner         *service.PlannerService
	recommendations *service.RecommendationService
	distractions    *service.DistractionService
	state           *service.StateService
	summaries       *service.SummaryService
}

// NewAPI constructs a handler set over the engine services. bus feeds the
// event stream and may be nil when streaming is not served.
func NewAPI(engine *service.Engine, bus *events.Bus) *API {
	return &API{
		db:              engine.DB,
		bus:             bus,
		tasks:           engine.Tasks,
		sprints:         engine.Sprints,
		kaizenLogs:      engine.KaizenLogs,
		planner:         engine.Planner,
		recommendations: engine.Recommendations,
		distractions:    engine.Distractions,
		state:           engine.State,
		summaries:       engine.Summaries,
	}
}

// DB exposes the underlying gorm instance for health checks.
func (a *API) DB() *gorm.DB {
	return a.db
}
