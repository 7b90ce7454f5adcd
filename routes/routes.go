package routes

import (
	"log"
	"net/http"
	"strconv"

	"questhunt/handlers"
	"questhunt/middleware"
	"questhunt/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	gameHandler *handlers.GameHandler,
	submissionHandler *handlers.SubmissionHandler,
	progressionHandler *handlers.ProgressionHandler,
	chatHandler *handlers.ChatHandler,
	hub *services.Hub,
	gameService *services.GameService,
	presenceService *services.PresenceService,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected organizer routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)

			games := protected.Group("/games")
			{
				games.GET("", gameHandler.ListGames)
				games.POST("", gameHandler.CreateGame)
				games.GET("/:id", gameHandler.GetGame)
				games.PATCH("/:id/status", gameHandler.UpdateGameStatus)
				games.POST("/:id/teams", gameHandler.CreateTeam)
				games.POST("/:id/categories", gameHandler.CreateCategory)
				games.POST("/:id/questions", gameHandler.CreateQuestion)
				games.GET("/:id/rollup", gameHandler.Rollup)
			}

			protected.POST("/submissions/:id/grade", submissionHandler.Grade)
		}

		// Public game routes; joining goes through the pin, not the id
		pins := api.Group("/pins")
		{
			pins.GET("/:pin", gameHandler.GetGameByPin)
			pins.POST("/:pin/join", gameHandler.JoinGame)
		}
		games := api.Group("/games")
		{
			games.GET("/:id/roster", gameHandler.Roster)
			games.GET("/:id/chat", chatHandler.GameHistory)
		}

		teams := api.Group("/teams/:teamID")
		{
			teams.GET("/chat", chatHandler.TeamHistory)
			teams.GET("/questions/:questionID/answered", gameHandler.IsAnswered)
		}

		// Player routes (players act under their player id, no account)
		players := api.Group("/players/:playerID")
		{
			players.GET("/progress", progressionHandler.GetProgress)
			players.GET("/categories", progressionHandler.DisplayableCategories)
			players.POST("/complete-category", progressionHandler.CompleteCategory)
			players.GET("/submissions", submissionHandler.ListForPlayer)
			players.POST("/submissions", submissionHandler.Create)
			players.PUT("/submissions/:id", submissionHandler.Amend)
			players.POST("/submissions/:id/submit", submissionHandler.Submit)
		}
	}

	// WebSocket endpoint for live chat and game events
	router.GET("/ws/:gameID/:playerID", func(c *gin.Context) {
		gameID, ok := parseParam(c, "gameID")
		if !ok {
			return
		}
		playerID, ok := parseParam(c, "playerID")
		if !ok {
			return
		}

		player, err := gameService.GetPlayerByID(playerID)
		if err != nil || player.GameID != gameID {
			log.Printf("ws: player %d rejected for game %d: %v", playerID, gameID, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Player not found in game"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("ws: upgrade failed for game %d, player %d: %v", gameID, playerID, err)
			return
		}

		client := hub.RegisterClient(conn, player.ID, player.TeamID, player.GameID, player.Name)

		// Explicit room joins scope what this connection hears
		if err := hub.JoinRoom(client, services.GameRoom(player.GameID)); err != nil {
			log.Printf("ws: join game room failed for player %d: %v", player.ID, err)
		}
		if err := hub.JoinRoom(client, services.TeamRoom(player.TeamID)); err != nil {
			log.Printf("ws: join team room failed for player %d: %v", player.ID, err)
		}

		presenceService.Touch(player.GameID, player.ID)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func parseParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
