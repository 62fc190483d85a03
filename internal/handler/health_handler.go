package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kaizenflow/internal/db"
)

// Health pings the store.
func (a *API) Health(c *gin.Context) {
	now := time.Now().UTC().Format(time.RFC3339)
	if err := db.Ping(c.Request.Context(), a.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error(), "timestamp": now})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": now})
}
