package handlers

import (
	"net/http"

	"questhunt/services"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
	gameService       *services.GameService
	hub               *services.Hub
}

func NewSubmissionHandler(
	submissionService *services.SubmissionService,
	gameService *services.GameService,
	hub *services.Hub,
) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		gameService:       gameService,
		hub:               hub,
	}
}

func (h *SubmissionHandler) Create(c *gin.Context) {
	playerID, ok := parseID(c, "playerID")
	if !ok {
		return
	}

	var req services.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.submissionService.Create(playerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

func (h *SubmissionHandler) Amend(c *gin.Context) {
	playerID, ok := parseID(c, "playerID")
	if !ok {
		return
	}
	submissionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.AmendSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.submissionService.Amend(submissionID, playerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *SubmissionHandler) Submit(c *gin.Context) {
	playerID, ok := parseID(c, "playerID")
	if !ok {
		return
	}
	submissionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	sub, err := h.submissionService.Submit(submissionID, playerID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Let teammates see the answer land as it happens
	if player, err := h.gameService.GetPlayerByID(playerID); err == nil {
		h.hub.Dispatch("submission_update", sub, services.Scope{TeamID: player.TeamID})
	}

	c.JSON(http.StatusOK, sub)
}

func (h *SubmissionHandler) Grade(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	submissionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Score int `json:"score" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gameID, err := h.submissionService.GameForSubmission(submissionID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.gameService.CheckGameOwnership(gameID, userID.(uint)); err != nil {
		respondError(c, err)
		return
	}

	sub, err := h.submissionService.Grade(submissionID, req.Score)
	if err != nil {
		respondError(c, err)
		return
	}

	if player, err := h.gameService.GetPlayerByID(sub.PlayerID); err == nil {
		h.hub.Dispatch("submission_graded", sub, services.Scope{TeamID: player.TeamID})
	}

	c.JSON(http.StatusOK, sub)
}

func (h *SubmissionHandler) ListForPlayer(c *gin.Context) {
	playerID, ok := parseID(c, "playerID")
	if !ok {
		return
	}

	subs, err := h.submissionService.ListForPlayer(playerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, subs)
}
