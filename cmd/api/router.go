package api

import (
	"net/http"

	"readerdash/internal/auth/delivery"
	authUsecase "readerdash/internal/auth/usecase"
	documentDelivery "readerdash/internal/document/delivery"
	settingsDelivery "readerdash/internal/settings/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUc authUsecase.AuthUsecase, authHandler *delivery.AuthHandler, documentHandler *documentDelivery.DocumentHandler, statsHandler *documentDelivery.StatsHandler, settingsHandler *settingsDelivery.SettingsHandler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(authUc), authHandler.Me)
		}

		// Sync routes (protected) - the interactive sync loop plus recovery actions
		syncRoutes := api.Group("/sync")
		syncRoutes.Use(delivery.AuthMiddleware(authUc))
		{
			syncRoutes.GET("/status", documentHandler.GetSyncStatus)
			syncRoutes.POST("/start", documentHandler.StartSync)
			syncRoutes.POST("/advance", documentHandler.AdvanceSync)
			syncRoutes.POST("/retry", documentHandler.RetrySync)
			syncRoutes.POST("/skip", documentHandler.SkipSyncCursor)
			syncRoutes.POST("/reset", documentHandler.ResetSync)
			syncRoutes.POST("/run", documentHandler.RunFullSync)
		}

		// Document routes (protected)
		documents := api.Group("/documents")
		documents.Use(delivery.AuthMiddleware(authUc))
		{
			documents.GET("", documentHandler.ListDocuments)
			documents.GET("/:id", documentHandler.GetDocumentByID)
			documents.POST("/archive", documentHandler.ArchiveDocuments)
			documents.POST("/archive/criteria", documentHandler.ArchiveByCriteria)
		}

		// Stats routes (protected) - dashboard aggregations
		stats := api.Group("/stats")
		stats.Use(delivery.AuthMiddleware(authUc))
		{
			stats.GET("/overview", statsHandler.GetOverview)
			stats.GET("/activity", statsHandler.GetDailyActivity)
			stats.GET("/stale", statsHandler.GetStaleDocuments)
			stats.GET("/sources", statsHandler.GetSourceEngagement)
			stats.GET("/velocity", statsHandler.GetReadingVelocity)
		}

		// Settings routes (protected) - Readwise token management
		settings := api.Group("/settings")
		settings.Use(delivery.AuthMiddleware(authUc))
		{
			settings.GET("/readwise", settingsHandler.GetReadwiseSettings)
			settings.PUT("/readwise", settingsHandler.UpdateReadwiseSettings)
			settings.POST("/readwise/test", settingsHandler.TestReadwiseConnection)
		}
	}
}
