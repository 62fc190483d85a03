package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kaizenflow/internal/service"
)

type sprintStartPayload struct {
	Bucket        string `json:"bucket"`
	TaskIDs       []uint `json:"task_ids"`
	TargetMinutes *int   `json:"target_minutes"`
	Goal          string `json:"goal"`
}

func (p sprintStartPayload) input() service.StartSprintInput {
	return service.StartSprintInput{
		Bucket:        p.Bucket,
		TaskIDs:       p.TaskIDs,
		TargetMinutes: p.TargetMinutes,
		Goal:          p.Goal,
	}
}

// StartSprint ends any active sprint and starts a new one.
func (a *API) StartSprint(c *gin.Context) {
	var payload sprintStartPayload
	if !bindJSON(c, &payload, "invalid sprint payload") {
		return
	}

	sprint, err := a.sprints.Start(c.Request.Context(), payload.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sprint)
}

func (a *API) StopSprint(c *gin.Context) {
	sprint, err := a.sprints.Stop(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sprint)
}

// ActiveSprint responds with null when no sprint is running.
func (a *API) ActiveSprint(c *gin.Context) {
	status, err := a.sprints.Active(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if status == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (a *API) SprintHistory(c *gin.Context) {
	limit, err := parseIntQuery(c, "limit")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	n := 0
	if limit != nil {
		n = *limit
	}
	sprints, err := a.sprints.History(c.Request.Context(), n)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sprints)
}
