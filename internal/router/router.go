package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kaizenflow/internal/handler"
)

// SetupRouter configures the gin engine and routes. mcpHandler is mounted at
// /mcp when non-nil.
func SetupRouter(api *handler.API, mcpHandler http.Handler) *gin.Engine {
	r := gin.Default()
	r.Use(allowCrossOrigin())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", api.Health)
		apiGroup.GET("/events", api.StreamEvents)

		tasks := apiGroup.Group("/tasks")
		{
			tasks.GET("", api.ListTasks)
			tasks.POST("", api.CreateTask)
			tasks.POST("/reorder", api.ReorderTasks)
			tasks.GET("/:id", api.GetTask)
			tasks.PUT("/:id", api.UpdateTask)
			tasks.DELETE("/:id", api.DeleteTask)
		}

		sprints := apiGroup.Group("/sprints")
		{
			sprints.GET("/active", api.ActiveSprint)
			sprints.GET("/history", api.SprintHistory)
			sprints.POST("/start", api.StartSprint)
			sprints.POST("/stop", api.StopSprint)
		}

		logs := apiGroup.Group("/kaizen-logs")
		{
			logs.GET("", api.ListKaizenLogs)
			logs.GET("/stats", api.KaizenLogStats)
			logs.POST("", api.CreateKaizenLog)
			logs.DELETE("/:id", api.DeleteKaizenLog)
		}

		adhd := apiGroup.Group("/adhd")
		{
			adhd.GET("/state", api.State)
			adhd.POST("/plan-day", api.PlanDay)
			adhd.POST("/distraction", api.LogDistraction)
			adhd.GET("/summary", api.Summary)
			adhd.GET("/focus-recommendation", api.FocusRecommendation)
			adhd.POST("/sprint/start", api.StartStructuredSprint)
		}
	}

	if mcpHandler != nil {
		r.Any("/mcp", gin.WrapH(mcpHandler))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}

// allowCrossOrigin lets the browser dashboard and local agents call the API
// from any origin.
func allowCrossOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Mcp-Session-Id")
		header.Set("Access-Control-Expose-Headers", "Mcp-Session-Id")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
