package handlers

import (
	"net/http"
	"strconv"

	"questhunt/services"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// GameHistory serves the durable game-wide chat log for late joiners.
func (h *ChatHandler) GameHistory(c *gin.Context) {
	gameID, ok := parseID(c, "id")
	if !ok {
		return
	}

	msgs, err := h.chatService.GameHistory(gameID, queryUint(c, "before"), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, msgs)
}

func (h *ChatHandler) TeamHistory(c *gin.Context) {
	teamID, ok := parseID(c, "teamID")
	if !ok {
		return
	}

	msgs, err := h.chatService.TeamHistory(teamID, queryUint(c, "before"), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, msgs)
}

func queryUint(c *gin.Context, name string) uint {
	v, _ := strconv.ParseUint(c.Query(name), 10, 32)
	return uint(v)
}

func queryInt(c *gin.Context, name string) int {
	v, _ := strconv.Atoi(c.Query(name))
	return v
}
