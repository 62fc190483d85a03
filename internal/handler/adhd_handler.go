package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kaizenflow/internal/service"
)

type planDayPayload struct {
	Goals            []string `json:"goals"`
	AvailableMinutes int      `json:"available_minutes"`
	EnergyProfile    string   `json:"energy_profile"`
	MustDoTaskIDs    []uint   `json:"must_do_task_ids"`
}

type distractionPayload struct {
	Source        string `json:"source"`
	Description   string `json:"description"`
	CaptureAsTask bool   `json:"capture_as_task"`
	TaskTitle     string `json:"task_title"`
}

// State returns the full engine snapshot for agents.
func (a *API) State(c *gin.Context) {
	state, err := a.state.State(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (a *API) PlanDay(c *gin.Context) {
	var payload planDayPayload
	if !bindJSON(c, &payload, "invalid plan payload") {
		return
	}

	plan, err := a.planner.PlanDay(c.Request.Context(), service.PlanDayInput{
		Goals:            payload.Goals,
		AvailableMinutes: payload.AvailableMinutes,
		EnergyProfile:    payload.EnergyProfile,
		MustDoTaskIDs:    payload.MustDoTaskIDs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (a *API) LogDistraction(c *gin.Context) {
	var payload distractionPayload
	if !bindJSON(c, &payload, "invalid distraction payload") {
		return
	}

	result, err := a.distractions.Capture(c.Request.Context(), service.CaptureInput{
		Source:        payload.Source,
		Description:   payload.Description,
		CaptureAsTask: payload.CaptureAsTask,
		TaskTitle:     payload.TaskTitle,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *API) Summary(c *gin.Context) {
	summary, err := a.summaries.Summarize(c.Request.Context(), c.Query("period"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// FocusRecommendation supports ?energy=low|medium|high&available_minutes=.
func (a *API) FocusRecommendation(c *gin.Context) {
	minutes, err := parseIntQuery(c, "available_minutes")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := a.recommendations.Recommend(c.Request.Context(), service.RecommendInput{
		Energy:           c.Query("energy"),
		AvailableMinutes: minutes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// StartStructuredSprint is StartSprint with a 45 minute default target.
func (a *API) StartStructuredSprint(c *gin.Context) {
	var payload sprintStartPayload
	if !bindJSON(c, &payload, "invalid sprint payload") {
		return
	}
	if payload.TargetMinutes == nil {
		target := service.DefaultStructuredTarget
		payload.TargetMinutes = &target
	}

	sprint, err := a.sprints.Start(c.Request.Context(), payload.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sprint)
}
