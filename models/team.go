package models

import (
	"time"

	"gorm.io/gorm"
)

type Team struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	GameID    uint           `json:"game_id" gorm:"not null;uniqueIndex:idx_teams_game_name"`
	Name      string         `json:"name" gorm:"not null;uniqueIndex:idx_teams_game_name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Game    Game     `json:"game,omitempty"`
	Players []Player `json:"players,omitempty" gorm:"foreignKey:TeamID"`
}
