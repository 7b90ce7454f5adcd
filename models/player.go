package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Player is created when someone joins a game; team and game affiliation
// never change afterwards. The progression columns are only ever written
// through the guarded update in the progression service.
type Player struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	GameID              uint           `json:"game_id" gorm:"not null;index"`
	TeamID              uint           `json:"team_id" gorm:"not null;index"`
	Name                string         `json:"name" gorm:"not null"`
	CompletedCategories datatypes.JSON `json:"completed_categories" gorm:"not null;default:'[]'"`
	CompletedQuestions  datatypes.JSON `json:"completed_questions" gorm:"not null;default:'[]'"`
	CurrentCategoryID   *uint          `json:"current_category_id"`
	ProgressVersion     int            `json:"-" gorm:"not null;default:0"`
	JoinedAt            time.Time      `json:"joined_at"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Game Game `json:"game,omitempty"`
	Team Team `json:"team,omitempty"`
}

// PlayerProgress is the progression view handed to callers.
type PlayerProgress struct {
	PlayerID            uint   `json:"player_id"`
	CompletedCategories []uint `json:"completed_categories"`
	CompletedQuestions  []uint `json:"completed_questions"`
	CurrentCategoryID   *uint  `json:"current_category_id"`
}

func (p *Player) Progress() PlayerProgress {
	return PlayerProgress{
		PlayerID:            p.ID,
		CompletedCategories: decodeIDSet(p.CompletedCategories),
		CompletedQuestions:  decodeIDSet(p.CompletedQuestions),
		CurrentCategoryID:   p.CurrentCategoryID,
	}
}

func (p *Player) CompletedCategoryIDs() []uint {
	return decodeIDSet(p.CompletedCategories)
}

func (p *Player) CompletedQuestionIDs() []uint {
	return decodeIDSet(p.CompletedQuestions)
}

func (p *Player) SetCompletedCategories(ids []uint) {
	p.CompletedCategories = encodeIDSet(ids)
}

func (p *Player) SetCompletedQuestions(ids []uint) {
	p.CompletedQuestions = encodeIDSet(ids)
}

func (p *Player) HasCompletedCategory(id uint) bool {
	for _, c := range p.CompletedCategoryIDs() {
		if c == id {
			return true
		}
	}
	return false
}

func decodeIDSet(raw datatypes.JSON) []uint {
	ids := []uint{}
	if len(raw) == 0 {
		return ids
	}
	// A corrupt column decodes to the empty set rather than failing reads
	_ = json.Unmarshal(raw, &ids)
	return ids
}

func encodeIDSet(ids []uint) datatypes.JSON {
	if ids == nil {
		ids = []uint{}
	}
	data, _ := json.Marshal(ids)
	return datatypes.JSON(data)
}
