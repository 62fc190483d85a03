package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kaizenflow/internal/service"
)

func (a *API) ListKaizenLogs(c *gin.Context) {
	limit, err := parseIntQuery(c, "limit")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	n := 0
	if limit != nil {
		n = *limit
	}
	logs, err := a.kaizenLogs.List(c.Request.Context(), n)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (a *API) KaizenLogStats(c *gin.Context) {
	stats, err := a.kaizenLogs.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (a *API) CreateKaizenLog(c *gin.Context) {
	var input service.KaizenLogInput
	if !bindJSON(c, &input, "invalid kaizen log payload") {
		return
	}

	entry, err := a.kaizenLogs.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (a *API) DeleteKaizenLog(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.kaizenLogs.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Kaizen log deleted"})
}
