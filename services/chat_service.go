package services

import (
	"strings"

	"questhunt/apperr"
	"questhunt/models"

	"gorm.io/gorm"
)

const chatHistoryDefaultLimit = 50

// ChatService owns the durable side of chat. The hub only fans out to whoever
// is connected right now; late joiners read history from here.
type ChatService struct {
	db *gorm.DB
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

// Post persists one chat message. teamID nil means game-wide scope.
func (s *ChatService) Post(gameID uint, teamID *uint, playerID uint, body string) (*models.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.InvalidArgument("message body is empty")
	}
	if gameID == 0 || playerID == 0 {
		return nil, apperr.InvalidArgument("game id and player id are required")
	}

	msg := models.ChatMessage{
		GameID:   gameID,
		TeamID:   teamID,
		PlayerID: playerID,
		Body:     body,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, apperr.Unavailable(err, "store chat message")
	}
	return &msg, nil
}

// GameHistory lists game-wide messages, newest first. beforeID 0 starts at
// the newest; otherwise only messages older than beforeID are returned.
func (s *ChatService) GameHistory(gameID uint, beforeID uint, limit int) ([]models.ChatMessage, error) {
	if gameID == 0 {
		return nil, apperr.InvalidArgument("game id is required")
	}
	q := s.db.Where("game_id = ? AND team_id IS NULL", gameID)
	return s.history(q, beforeID, limit)
}

// TeamHistory lists messages scoped to one team, newest first.
func (s *ChatService) TeamHistory(teamID uint, beforeID uint, limit int) ([]models.ChatMessage, error) {
	if teamID == 0 {
		return nil, apperr.InvalidArgument("team id is required")
	}
	q := s.db.Where("team_id = ?", teamID)
	return s.history(q, beforeID, limit)
}

func (s *ChatService) history(q *gorm.DB, beforeID uint, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = chatHistoryDefaultLimit
	}
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}

	var msgs []models.ChatMessage
	err := q.Preload("Player").
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, apperr.Unavailable(err, "list chat history")
	}
	return msgs, nil
}
