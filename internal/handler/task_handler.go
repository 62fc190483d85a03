package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kaizenflow/internal/service"
)

type reorderPayload struct {
	Tasks []service.ReorderItem `json:"tasks"`
}

// ListTasks supports ?bucket=a,b&completed=&highlight=&source=&ids=&search=&limit=.
func (a *API) ListTasks(c *gin.Context) {
	filter := service.TaskFilter{
		Buckets: splitQueryValues(c.QueryArray("bucket")),
		Source:  c.Query("source"),
		IDs:     parseUintQuerySlice(c.QueryArray("ids")),
		Search:  c.Query("search"),
	}

	var err error
	if filter.Completed, err = parseBoolQuery(c, "completed"); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Highlight, err = parseBoolQuery(c, "highlight"); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseIntQuery(c, "limit")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if limit != nil {
		filter.Limit = *limit
	}

	tasks, err := a.tasks.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (a *API) GetTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := a.tasks.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (a *API) CreateTask(c *gin.Context) {
	var input service.TaskInput
	if !bindJSON(c, &input, "invalid task payload") {
		return
	}

	task, err := a.tasks.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask writes only the fields present in the body; an explicit null
// clears a nullable field.
func (a *API) UpdateTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var update service.TaskUpdate
	if !bindJSON(c, &update, "invalid task payload") {
		return
	}

	task, err := a.tasks.Update(c.Request.Context(), id, update)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (a *API) DeleteTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.tasks.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task deleted"})
}

// ReorderTasks applies all moves in one transaction.
func (a *API) ReorderTasks(c *gin.Context) {
	var payload reorderPayload
	if !bindJSON(c, &payload, "invalid reorder payload") {
		return
	}

	if err := a.tasks.Reorder(c.Request.Context(), payload.Tasks); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
