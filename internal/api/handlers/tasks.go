package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rplus-dev/rplus/internal/scheduler"
)

// TaskSource reports the periodic tasks of the daemon.
type TaskSource interface {
	Stats() []scheduler.TaskStats
}

// ListTasks returns the counters of every periodic task.
//
// GET /api/v1/tasks
func ListTasks(source TaskSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := source.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   stats,
			"count":  len(stats),
		})
	}
}
