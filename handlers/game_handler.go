package handlers

import (
	"net/http"
	"strconv"

	"questhunt/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	gameService        *services.GameService
	aggregationService *services.AggregationService
	presenceService    *services.PresenceService
	hub                *services.Hub
}

func NewGameHandler(
	gameService *services.GameService,
	aggregationService *services.AggregationService,
	presenceService *services.PresenceService,
	hub *services.Hub,
) *GameHandler {
	return &GameHandler{
		gameService:        gameService,
		aggregationService: aggregationService,
		presenceService:    presenceService,
		hub:                hub,
	}
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.gameService.CreateGame(userID.(uint), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, game)
}

func (h *GameHandler) ListGames(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	games, err := h.gameService.ListGames(userID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, games)
}

func (h *GameHandler) GetGame(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	gameID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.gameService.CheckGameOwnership(gameID, userID.(uint)); err != nil {
		respondError(c, err)
		return
	}

	game, err := h.gameService.GetGame(gameID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) UpdateGameStatus(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	gameID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.gameService.UpdateGameStatus(gameID, userID.(uint), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	// Everyone connected to the game hears about the status change
	h.hub.Dispatch("game_status", gin.H{"game_id": game.ID, "status": game.Status},
		services.Scope{GameID: game.ID})

	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) CreateTeam(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	gameID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team, err := h.gameService.CreateTeam(gameID, userID.(uint), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, team)
}

func (h *GameHandler) CreateCategory(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	gameID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.gameService.CreateCategory(gameID, userID.(uint), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (h *GameHandler) CreateQuestion(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	gameID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		services.CreateQuestionRequest
		CategoryID *uint `json:"category_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.gameService.CreateQuestion(gameID, userID.(uint), req.CategoryID, &req.CreateQuestionRequest)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

func (h *GameHandler) JoinGame(c *gin.Context) {
	var req services.JoinGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Pin = c.Param("pin")

	player, err := h.gameService.JoinGame(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	// Announce the join to everyone already in the game
	h.hub.Dispatch("player_joined", player, services.Scope{GameID: player.GameID})

	c.JSON(http.StatusCreated, player)
}

func (h *GameHandler) GetGameByPin(c *gin.Context) {
	game, err := h.gameService.GetGameByPin(c.Param("pin"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, game)
}

// Rollup returns the team-level aggregated answers for the game.
func (h *GameHandler) Rollup(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	gameID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.gameService.CheckGameOwnership(gameID, userID.(uint)); err != nil {
		respondError(c, err)
		return
	}

	answers, err := h.aggregationService.Aggregate(gameID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, answers)
}

// IsAnswered reports whether the team has answered the question yet.
func (h *GameHandler) IsAnswered(c *gin.Context) {
	teamID, ok := parseID(c, "teamID")
	if !ok {
		return
	}
	questionID, ok := parseID(c, "questionID")
	if !ok {
		return
	}

	answered, err := h.aggregationService.IsQuestionAnsweredByTeam(teamID, questionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"team_id":     teamID,
		"question_id": questionID,
		"answered":    answered,
	})
}

// Roster lists the players currently online in the game.
func (h *GameHandler) Roster(c *gin.Context) {
	gameID, ok := parseID(c, "id")
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"game_id": gameID,
		"online":  h.presenceService.Online(gameID),
	})
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param})
		return 0, false
	}
	return uint(id), true
}
