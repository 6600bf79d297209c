package api

import (
	authDelivery "readerdash/internal/auth/delivery"
	authUsecasePkg "readerdash/internal/auth/usecase"
	documentDelivery "readerdash/internal/document/delivery"
	documentRepo "readerdash/internal/document/repository"
	documentUsecasePkg "readerdash/internal/document/usecase"
	settingsDelivery "readerdash/internal/settings/delivery"
	settingsUsecasePkg "readerdash/internal/settings/usecase"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase     authUsecasePkg.AuthUsecase
	authHandler     *authDelivery.AuthHandler
	documentHandler *documentDelivery.DocumentHandler
	statsHandler    *documentDelivery.StatsHandler
	settingsHandler *settingsDelivery.SettingsHandler
}

func NewHandler(authUc authUsecasePkg.AuthUsecase, syncUc documentUsecasePkg.SyncUsecase, archiveUc documentUsecasePkg.ArchiveUsecase, statsUc documentUsecasePkg.StatsUsecase, settingsUc settingsUsecasePkg.SettingsUsecase, docRepo documentRepo.DocumentRepository) *Handler {
	return &Handler{
		authUsecase:     authUc,
		authHandler:     authDelivery.NewAuthHandler(authUc),
		documentHandler: documentDelivery.NewDocumentHandler(syncUc, archiveUc, docRepo),
		statsHandler:    documentDelivery.NewStatsHandler(statsUc),
		settingsHandler: settingsDelivery.NewSettingsHandler(settingsUc),
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.authHandler, h.documentHandler, h.statsHandler, h.settingsHandler)

	return r.Run(addr)
}
