package main

import (
	"log"

	"questhunt/config"
	"questhunt/handlers"
	"questhunt/middleware"
	"questhunt/models"
	"questhunt/routes"
	"questhunt/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.Team{},
		&models.Player{},
		&models.Category{},
		&models.Question{},
		&models.Submission{},
		&models.ChatMessage{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Stores behind the engines
	submissionStore := services.NewGormSubmissionStore(db)
	catalogStore := services.NewGormCatalogStore(db)
	playerStore := services.NewGormPlayerStore(db)

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	gameService := services.NewGameService(db)
	submissionService := services.NewSubmissionService(db)
	chatService := services.NewChatService(db)
	presenceService := services.NewPresenceService(redisClient)
	aggregationService := services.NewAggregationService(submissionStore, playerStore)
	progressionService := services.NewProgressionService(playerStore, catalogStore, aggregationService)

	// Initialize WebSocket hub
	hub := services.NewHub(chatService)
	hub.OnDisconnect(func(playerID, gameID uint) {
		presenceService.Remove(gameID, playerID)
	})
	go hub.Run()
	defer hub.Stop()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	gameHandler := handlers.NewGameHandler(gameService, aggregationService, presenceService, hub)
	submissionHandler := handlers.NewSubmissionHandler(submissionService, gameService, hub)
	progressionHandler := handlers.NewProgressionHandler(progressionService, gameService, hub)
	chatHandler := handlers.NewChatHandler(chatService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, gameHandler, submissionHandler,
		progressionHandler, chatHandler, hub, gameService, presenceService, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
