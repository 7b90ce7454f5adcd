package handlers

import (
	"net/http"

	"questhunt/apperr"
	"questhunt/services"

	"github.com/gin-gonic/gin"
)

type ProgressionHandler struct {
	progressionService *services.ProgressionService
	gameService        *services.GameService
	hub                *services.Hub
}

func NewProgressionHandler(
	progressionService *services.ProgressionService,
	gameService *services.GameService,
	hub *services.Hub,
) *ProgressionHandler {
	return &ProgressionHandler{
		progressionService: progressionService,
		gameService:        gameService,
		hub:                hub,
	}
}

func (h *ProgressionHandler) GetProgress(c *gin.Context) {
	playerID, ok := parseID(c, "playerID")
	if !ok {
		return
	}

	progress, err := h.progressionService.GetProgress(playerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h *ProgressionHandler) DisplayableCategories(c *gin.Context) {
	playerID, ok := parseID(c, "playerID")
	if !ok {
		return
	}

	categories, err := h.progressionService.DisplayableCategories(playerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (h *ProgressionHandler) CompleteCategory(c *gin.Context) {
	playerID, ok := parseID(c, "playerID")
	if !ok {
		return
	}

	var req struct {
		CategoryID uint `json:"category_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	progress, err := h.progressionService.CompleteCategory(playerID, req.CategoryID)
	if err != nil {
		if apperr.Is(err, apperr.CodePreconditionFailed) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "finish all questions first",
				"code":  apperr.CodePreconditionFailed,
			})
			return
		}
		respondError(c, err)
		return
	}

	// Teammates share the gate, so they want to know it opened
	if player, err := h.gameService.GetPlayerByID(playerID); err == nil {
		h.hub.Dispatch("progress_update", progress, services.Scope{TeamID: player.TeamID})
	}

	c.JSON(http.StatusOK, progress)
}
