package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rplus-dev/rplus/internal/api/handlers"
)

// Configures all API routes
func (s *Server) setupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	v1.GET("/health", handlers.HandleHealth(s.config.Version, s.startTime))
	v1.GET("/about", handlers.HandleAbout(s.config.Version))
	v1.GET("/tasks", handlers.ListTasks(s.config.Tasks))

	presence := v1.Group("/presence")
	{
		presence.POST("", handlers.PostPresences(s.config.Presence, s.config.PresenceTimeout))
		presence.GET("/metrics", handlers.GetPresenceMetrics(s.config.Presence))
		presence.GET("/:userId", handlers.GetPresence(s.config.Presence, s.config.PresenceTimeout))
	}

	navigation := v1.Group("/navigation")
	{
		navigation.GET("", handlers.GetNavigation(s.config.Navigation))
		navigation.POST("/refresh", handlers.RefreshNavigation(s.config.Navigation))
	}

	settings := v1.Group("/settings")
	{
		settings.GET("", handlers.ListSettings(s.config.Settings))
		settings.GET("/:key", handlers.GetSetting(s.config.Settings))
		settings.PUT("/:key", handlers.PutSetting(s.config.Settings))
	}

	v1.GET("/assets/:id/sales", handlers.GetAssetSales(s.config.Sales))
	v1.POST("/transactions/items", handlers.SummarizeTransactions())
}
