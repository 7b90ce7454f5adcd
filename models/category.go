package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups questions. A sequential category is gated: players see
// only one incomplete sequential category at a time, ordered by
// (Order, ID) ascending within its game. Non-sequential categories are
// always visible.
type Category struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	GameID       uint           `json:"game_id" gorm:"not null;index"`
	Name         string         `json:"name" gorm:"not null"`
	IsSequential bool           `json:"is_sequential" gorm:"not null;default:false"`
	Order        int            `json:"order" gorm:"not null;default:0"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Game      Game       `json:"game,omitempty"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:CategoryID"`
}
