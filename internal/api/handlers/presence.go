package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rplus-dev/rplus/internal/batching"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/presence"
)

// PresenceService resolves user presence through the batch coalescer.
type PresenceService interface {
	GetPresence(ctx context.Context, userID int64) (presence.UserPresence, error)
	GetPresences(ctx context.Context, userIDs []int64) (map[int64]presence.UserPresence, error)
	Metrics() batching.Metrics
	Config() batching.Config
}

// PresenceRequest is the body of a bulk presence lookup. The max tag mirrors
// presence.MaxBulkLookup.
type PresenceRequest struct {
	UserIDs []int64 `json:"user_ids" binding:"required,min=1,max=1000,dive,gt=0"`
}

// PresenceMetricsResponse pairs the coalescer counters with its settings.
type PresenceMetricsResponse struct {
	Metrics batching.Metrics `json:"metrics"`
	Config  batching.Config  `json:"config"`
}

// GetPresence handles lookups of a single user.
//
// GET /api/v1/presence/:userId
//
// The request waits for the batch the lookup joins, at most timeout (zero
// waits as long as the client does). Giving up stops the wait, not the batch.
func GetPresence(service PresenceService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
		if err != nil || userID <= 0 {
			errorResponse(c, http.StatusBadRequest, "Invalid user ID", presence.ErrInvalidUserID)
			return
		}

		ctx, cancel := lookupContext(c, timeout)
		defer cancel()

		result, err := service.GetPresence(ctx, userID)
		if err != nil {
			presenceError(c, err)
			return
		}
		success(c, result)
	}
}

// PostPresences handles bulk lookups. Every id joins the coalescer at once,
// so up to MaxSize of them share one upstream call.
//
// POST /api/v1/presence
func PostPresences(service PresenceService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PresenceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logging.Warn("Presence lookup: Invalid request body: %v", err)
			errorResponse(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		ctx, cancel := lookupContext(c, timeout)
		defer cancel()

		results, err := service.GetPresences(ctx, req.UserIDs)
		if err != nil {
			presenceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   results,
			"count":  len(results),
		})
	}
}

// GetPresenceMetrics returns the coalescer counters.
//
// GET /api/v1/presence/metrics
func GetPresenceMetrics(service PresenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		success(c, PresenceMetricsResponse{
			Metrics: service.Metrics(),
			Config:  service.Config(),
		})
	}
}

func lookupContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

func presenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, presence.ErrInvalidUserID):
		errorResponse(c, http.StatusBadRequest, "Invalid user ID", err)
	case errors.Is(err, batching.ErrStopped):
		errorResponse(c, http.StatusServiceUnavailable, "Presence service stopped", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		errorResponse(c, http.StatusGatewayTimeout, "Presence lookup abandoned", err)
	case errors.Is(err, presence.ErrLookupFailed):
		logging.Warn("Presence lookup failed: %v", err)
		errorResponse(c, http.StatusBadGateway, "Presence lookup failed", err)
	default:
		logging.Error("Presence lookup: Unexpected error: %v", err)
		errorResponse(c, http.StatusInternalServerError, "Presence lookup failed", err)
	}
}
