package models

import (
	"time"

	"gorm.io/gorm"
)

type Game struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	OwnerID   uint           `json:"owner_id" gorm:"not null"`
	Name      string         `json:"name" gorm:"not null"`
	Pin       string         `json:"pin" gorm:"uniqueIndex;not null"`
	Status    string         `json:"status" gorm:"not null;default:'draft'"` // draft, live, finished
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Owner      User       `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Teams      []Team     `json:"teams,omitempty" gorm:"foreignKey:GameID"`
	Categories []Category `json:"categories,omitempty" gorm:"foreignKey:GameID"`
	Questions  []Question `json:"questions,omitempty" gorm:"foreignKey:GameID"`
}
