package main

import (
	"log"
	"os"

	api "readerdash/cmd/api"
	authdomain "readerdash/internal/auth/domain"
	authRepo "readerdash/internal/auth/repository"
	authUsecase "readerdash/internal/auth/usecase"
	documentdomain "readerdash/internal/document/domain"
	documentRepo "readerdash/internal/document/repository"
	"readerdash/internal/document/scheduler"
	documentUsecase "readerdash/internal/document/usecase"
	settingsdomain "readerdash/internal/settings/domain"
	settingsRepo "readerdash/internal/settings/repository"
	settingsUsecase "readerdash/internal/settings/usecase"
	"readerdash/pkg/config"
	"readerdash/pkg/database"
	"readerdash/pkg/readwise"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}, &documentdomain.Document{}, &documentdomain.SyncState{}, &settingsdomain.Setting{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	docRepository := documentRepo.NewDocumentRepository(db)
	syncStateRepository := documentRepo.NewSyncStateRepository(db)
	settingRepository := settingsRepo.NewSettingRepository(db)

	// Initialize Readwise client (all upstream calls go through it)
	readwiseClient := readwise.NewClient(cfg.ReadwiseBaseURL)

	// Initialize use cases
	settingsUc := settingsUsecase.NewSettingsUsecase(settingRepository, readwiseClient)
	authUc := authUsecase.NewAuthUsecase(userRepository, cfg)
	syncUc := documentUsecase.NewSyncUsecase(docRepository, syncStateRepository, readwiseClient, settingsUc)
	archiveUc := documentUsecase.NewArchiveUsecase(docRepository, readwiseClient, settingsUc)
	statsUc := documentUsecase.NewStatsUsecase(docRepository, syncStateRepository)

	// Scheduled unattended sync
	if cfg.SyncEnabled {
		syncScheduler := scheduler.NewSyncScheduler(syncUc, cfg.SyncInterval)
		syncScheduler.Start()
	} else {
		log.Println("[Main] Scheduled sync disabled")
	}

	// Initialize HTTP handler
	handler := api.NewHandler(authUc, syncUc, archiveUc, statsUc, settingsUc, docRepository)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Printf("Server starting on port %s", port)
	if err := handler.Start(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
