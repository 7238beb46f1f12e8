package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rplus-dev/rplus/internal/navigation"
)

// NavigationService exposes the navigation counters.
type NavigationService interface {
	Counter() *navigation.Counter
	RefreshRobux(ctx context.Context) (int64, error)
	RefreshFriendRequests(ctx context.Context) (int64, error)
}

// GetNavigation returns the current counter state.
//
// GET /api/v1/navigation
func GetNavigation(service NavigationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		success(c, service.Counter().State())
	}
}

// RefreshNavigation refetches both counters outside the polling loops.
//
// POST /api/v1/navigation/refresh
func RefreshNavigation(service NavigationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		_, robuxErr := service.RefreshRobux(ctx)
		_, friendsErr := service.RefreshFriendRequests(ctx)
		if err := errors.Join(robuxErr, friendsErr); err != nil {
			status := http.StatusBadGateway
			if errors.Is(err, navigation.ErrNoUser) {
				status = http.StatusConflict
			}
			errorResponse(c, status, "Failed to refresh navigation counters", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   service.Counter().State(),
		})
	}
}
