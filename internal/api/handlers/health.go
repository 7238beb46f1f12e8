// Package handlers provides the HTTP request handlers of the rplusd API.
//
// Every handler is a factory that closes over the service it serves and
// returns a gin.HandlerFunc, so routes can be wired against small
// interfaces and tested with fakes.
//
// RESPONSE SHAPE:
//   - Success: {"status": "success", "data": ...} with "count" for lists
//   - Failure: {"error": "<summary>", "details": "<cause>"}
//
// Health and about are plain objects for compatibility with simple health checkers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

// HandleHealth returns the health status of the API server
func HandleHealth(version string, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		uptime := time.Since(startTime).Truncate(time.Second)

		response := HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    uptime.String(),
		}

		c.JSON(http.StatusOK, response)
	}
}

// errorResponse writes the failure shape shared by all handlers.
func errorResponse(c *gin.Context, status int, summary string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	c.JSON(status, gin.H{
		"error":   summary,
		"details": details,
	})
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   data,
	})
}
