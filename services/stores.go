package services

import (
	"errors"

	"questhunt/apperr"
	"questhunt/models"

	"gorm.io/gorm"
)

// The engines consume the store through these interfaces so they stay pure
// projections over whatever backs them; the gorm types below are the real
// implementation and tests substitute in-memory fakes.

type SubmissionStore interface {
	ListByGame(gameID uint) ([]models.Submission, error)
	ListByQuestion(questionID uint) ([]models.Submission, error)
}

type CatalogStore interface {
	GetCategory(categoryID uint) (*models.Category, error)
	ListCategories(gameID uint) ([]models.Category, error)
	ListQuestionsByCategory(categoryID uint) ([]models.Question, error)
}

type PlayerStore interface {
	GetPlayer(playerID uint) (*models.Player, error)
	ListByGame(gameID uint) ([]models.Player, error)
	// UpdateProgress writes the player's progression columns iff the stored
	// progress_version still equals expectedVersion, bumping it by one.
	// Losing the race surfaces as ConcurrencyConflict.
	UpdateProgress(player *models.Player, expectedVersion int) error
}

type GormSubmissionStore struct {
	db *gorm.DB
}

func NewGormSubmissionStore(db *gorm.DB) *GormSubmissionStore {
	return &GormSubmissionStore{db: db}
}

func (s *GormSubmissionStore) ListByGame(gameID uint) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.db.
		Joins("JOIN questions ON questions.id = submissions.question_id").
		Where("questions.game_id = ?", gameID).
		Order("submissions.created_at, submissions.id").
		Find(&subs).Error
	if err != nil {
		return nil, apperr.Unavailable(err, "list submissions for game %d", gameID)
	}
	return subs, nil
}

func (s *GormSubmissionStore) ListByQuestion(questionID uint) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.db.Where("question_id = ?", questionID).
		Order("created_at, id").
		Find(&subs).Error
	if err != nil {
		return nil, apperr.Unavailable(err, "list submissions for question %d", questionID)
	}
	return subs, nil
}

type GormCatalogStore struct {
	db *gorm.DB
}

func NewGormCatalogStore(db *gorm.DB) *GormCatalogStore {
	return &GormCatalogStore{db: db}
}

func (s *GormCatalogStore) GetCategory(categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category %d not found", categoryID)
		}
		return nil, apperr.Unavailable(err, "get category %d", categoryID)
	}
	return &category, nil
}

func (s *GormCatalogStore) ListCategories(gameID uint) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Where("game_id = ?", gameID).
		Order("\"order\", id").
		Find(&categories).Error
	if err != nil {
		return nil, apperr.Unavailable(err, "list categories for game %d", gameID)
	}
	return categories, nil
}

func (s *GormCatalogStore) ListQuestionsByCategory(categoryID uint) ([]models.Question, error) {
	var questions []models.Question
	err := s.db.Where("category_id = ?", categoryID).
		Order("id").
		Find(&questions).Error
	if err != nil {
		return nil, apperr.Unavailable(err, "list questions for category %d", categoryID)
	}
	return questions, nil
}

type GormPlayerStore struct {
	db *gorm.DB
}

func NewGormPlayerStore(db *gorm.DB) *GormPlayerStore {
	return &GormPlayerStore{db: db}
}

func (s *GormPlayerStore) GetPlayer(playerID uint) (*models.Player, error) {
	var player models.Player
	if err := s.db.First(&player, playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("player %d not found", playerID)
		}
		return nil, apperr.Unavailable(err, "get player %d", playerID)
	}
	return &player, nil
}

func (s *GormPlayerStore) ListByGame(gameID uint) ([]models.Player, error) {
	var players []models.Player
	err := s.db.Where("game_id = ?", gameID).Find(&players).Error
	if err != nil {
		return nil, apperr.Unavailable(err, "list players for game %d", gameID)
	}
	return players, nil
}

func (s *GormPlayerStore) UpdateProgress(player *models.Player, expectedVersion int) error {
	res := s.db.Model(&models.Player{}).
		Where("id = ? AND progress_version = ?", player.ID, expectedVersion).
		Updates(map[string]interface{}{
			"completed_categories": player.CompletedCategories,
			"completed_questions":  player.CompletedQuestions,
			"current_category_id":  player.CurrentCategoryID,
			"progress_version":     expectedVersion + 1,
		})
	if res.Error != nil {
		return apperr.Unavailable(res.Error, "update progress for player %d", player.ID)
	}
	if res.RowsAffected == 0 {
		return apperr.ConcurrencyConflict("player %d progress changed concurrently", player.ID)
	}
	player.ProgressVersion = expectedVersion + 1
	return nil
}
