package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatMessage is the durable record behind the live chat: the hub fans a
// message out to whoever is connected, this row is what late joiners read.
// TeamID nil means the message was addressed to the whole game.
type ChatMessage struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	GameID    uint           `json:"game_id" gorm:"not null;index"`
	TeamID    *uint          `json:"team_id" gorm:"index"`
	PlayerID  uint           `json:"player_id" gorm:"not null"`
	Body      string         `json:"body" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Player Player `json:"player,omitempty"`
}
