package models

import (
	"time"

	"gorm.io/gorm"
)

type Question struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	GameID     uint           `json:"game_id" gorm:"not null;index"`
	CategoryID *uint          `json:"category_id" gorm:"index"`
	Title      string         `json:"title" gorm:"not null"`
	Points     int            `json:"points" gorm:"not null;default:0"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Game     Game      `json:"game,omitempty"`
	Category *Category `json:"category,omitempty"`
}
