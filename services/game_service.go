package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"questhunt/apperr"
	"questhunt/models"

	"gorm.io/gorm"
)

const (
	GameStatusDraft    = "draft"
	GameStatusLive     = "live"
	GameStatusFinished = "finished"
)

// GameService owns game, team, category and question CRUD plus the join
// flow. The engines read through the store interfaces; this service is the
// write side the organizer UI talks to.
type GameService struct {
	db *gorm.DB
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{db: db}
}

type CreateGameRequest struct {
	Name       string                  `json:"name" binding:"required"`
	Teams      []string                `json:"teams"`
	Categories []CreateCategoryRequest `json:"categories"`
}

type CreateCategoryRequest struct {
	Name         string                  `json:"name" binding:"required"`
	IsSequential bool                    `json:"is_sequential"`
	Order        int                     `json:"order"`
	Questions    []CreateQuestionRequest `json:"questions"`
}

type CreateQuestionRequest struct {
	Title  string `json:"title" binding:"required"`
	Points int    `json:"points" binding:"min=0"`
}

type JoinGameRequest struct {
	Pin    string `json:"pin"` // taken from the URL when joining over HTTP
	Name   string `json:"name" binding:"required"`
	TeamID uint   `json:"team_id" binding:"required"`
}

// CreateGame creates the game with its teams, categories and questions in
// one transaction, so a half-created hunt never becomes visible.
func (s *GameService) CreateGame(ownerID uint, req *CreateGameRequest) (*models.Game, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	game := models.Game{
		OwnerID: ownerID,
		Name:    req.Name,
		Pin:     generatePin(),
		Status:  GameStatusDraft,
	}
	if err := tx.Create(&game).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Unavailable(err, "create game")
	}

	for _, name := range req.Teams {
		team := models.Team{GameID: game.ID, Name: name}
		if err := tx.Create(&team).Error; err != nil {
			tx.Rollback()
			return nil, apperr.Unavailable(err, "create team")
		}
	}

	for _, cReq := range req.Categories {
		category := models.Category{
			GameID:       game.ID,
			Name:         cReq.Name,
			IsSequential: cReq.IsSequential,
			Order:        cReq.Order,
		}
		if err := tx.Create(&category).Error; err != nil {
			tx.Rollback()
			return nil, apperr.Unavailable(err, "create category")
		}

		for _, qReq := range cReq.Questions {
			if qReq.Points < 0 {
				tx.Rollback()
				return nil, apperr.InvalidArgument("question points must be non-negative")
			}
			categoryID := category.ID
			question := models.Question{
				GameID:     game.ID,
				CategoryID: &categoryID,
				Title:      qReq.Title,
				Points:     qReq.Points,
			}
			if err := tx.Create(&question).Error; err != nil {
				tx.Rollback()
				return nil, apperr.Unavailable(err, "create question")
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Unavailable(err, "commit game creation")
	}

	return s.GetGame(game.ID)
}

func (s *GameService) ListGames(ownerID uint) ([]models.Game, error) {
	var games []models.Game
	err := s.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&games).Error
	if err != nil {
		return nil, apperr.Unavailable(err, "list games")
	}
	return games, nil
}

func (s *GameService) GetGame(gameID uint) (*models.Game, error) {
	var game models.Game
	err := s.db.
		Preload("Teams").
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("categories.\"order\", categories.id")
		}).
		Preload("Questions").
		First(&game, gameID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("game %d not found", gameID)
		}
		return nil, apperr.Unavailable(err, "get game %d", gameID)
	}
	return &game, nil
}

func (s *GameService) GetGameByPin(pin string) (*models.Game, error) {
	var game models.Game
	err := s.db.Where("LOWER(pin) = ?", strings.ToLower(pin)).
		Preload("Teams").
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("categories.\"order\", categories.id")
		}).
		First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("game with pin %s not found", pin)
		}
		return nil, apperr.Unavailable(err, "get game by pin")
	}
	return &game, nil
}

// CheckGameOwnership rejects callers who do not own the game. Finer-grained
// authorization stays a predicate at the handler edge.
func (s *GameService) CheckGameOwnership(gameID, userID uint) error {
	var game models.Game
	if err := s.db.First(&game, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("game %d not found", gameID)
		}
		return apperr.Unavailable(err, "get game %d", gameID)
	}
	if game.OwnerID != userID {
		return apperr.NotFound("game %d not found", gameID)
	}
	return nil
}

func (s *GameService) UpdateGameStatus(gameID, userID uint, status string) (*models.Game, error) {
	if status != GameStatusDraft && status != GameStatusLive && status != GameStatusFinished {
		return nil, apperr.InvalidArgument("unknown game status %q", status)
	}
	if err := s.CheckGameOwnership(gameID, userID); err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Game{}).Where("id = ?", gameID).
		Update("status", status).Error; err != nil {
		return nil, apperr.Unavailable(err, "update game status")
	}
	return s.GetGame(gameID)
}

func (s *GameService) CreateTeam(gameID, userID uint, name string) (*models.Team, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.InvalidArgument("team name is required")
	}
	if err := s.CheckGameOwnership(gameID, userID); err != nil {
		return nil, err
	}

	team := models.Team{GameID: gameID, Name: name}
	if err := s.db.Create(&team).Error; err != nil {
		return nil, apperr.Unavailable(err, "create team")
	}
	return &team, nil
}

func (s *GameService) CreateCategory(gameID, userID uint, req *CreateCategoryRequest) (*models.Category, error) {
	if err := s.CheckGameOwnership(gameID, userID); err != nil {
		return nil, err
	}

	category := models.Category{
		GameID:       gameID,
		Name:         req.Name,
		IsSequential: req.IsSequential,
		Order:        req.Order,
	}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, apperr.Unavailable(err, "create category")
	}
	return &category, nil
}

func (s *GameService) CreateQuestion(gameID, userID uint, categoryID *uint, req *CreateQuestionRequest) (*models.Question, error) {
	if req.Points < 0 {
		return nil, apperr.InvalidArgument("question points must be non-negative")
	}
	if err := s.CheckGameOwnership(gameID, userID); err != nil {
		return nil, err
	}
	if categoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND game_id = ?", *categoryID, gameID).
			First(&category).Error; err != nil {
			return nil, apperr.NotFound("category %d not found in game %d", *categoryID, gameID)
		}
	}

	question := models.Question{
		GameID:     gameID,
		CategoryID: categoryID,
		Title:      req.Title,
		Points:     req.Points,
	}
	if err := s.db.Create(&question).Error; err != nil {
		return nil, apperr.Unavailable(err, "create question")
	}
	return &question, nil
}

// JoinGame creates a player on the chosen team. Team and game affiliation
// are fixed forever after this. The player starts pointed at the game's
// first sequential category, if there is one.
func (s *GameService) JoinGame(req *JoinGameRequest) (*models.Player, error) {
	game, err := s.GetGameByPin(req.Pin)
	if err != nil {
		return nil, err
	}
	if game.Status == GameStatusFinished {
		return nil, apperr.PreconditionFailed("game is finished")
	}

	var team models.Team
	if err := s.db.Where("id = ? AND game_id = ?", req.TeamID, game.ID).
		First(&team).Error; err != nil {
		return nil, apperr.NotFound("team %d not found in game %d", req.TeamID, game.ID)
	}

	var existing models.Player
	if err := s.db.Where("game_id = ? AND name = ?", game.ID, req.Name).
		First(&existing).Error; err == nil {
		return nil, apperr.InvalidArgument("player name already taken")
	}

	player := models.Player{
		GameID:   game.ID,
		TeamID:   team.ID,
		Name:     req.Name,
		JoinedAt: time.Now(),
	}
	player.SetCompletedCategories(nil)
	player.SetCompletedQuestions(nil)

	var categories []models.Category
	if err := s.db.Where("game_id = ? AND is_sequential = ?", game.ID, true).
		Order("\"order\", id").
		Limit(1).
		Find(&categories).Error; err == nil && len(categories) > 0 {
		first := categories[0].ID
		player.CurrentCategoryID = &first
	}

	if err := s.db.Create(&player).Error; err != nil {
		return nil, apperr.Unavailable(err, "create player")
	}
	return &player, nil
}

func (s *GameService) GetPlayerByID(playerID uint) (*models.Player, error) {
	var player models.Player
	if err := s.db.First(&player, playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("player %d not found", playerID)
		}
		return nil, apperr.Unavailable(err, "get player %d", playerID)
	}
	return &player, nil
}

func generatePin() string {
	bytes := make([]byte, 3)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)[:6]
}
