package domain

import (
	"time"

	"github.com/google/uuid"
)

type GameStatus string

const (
	GameStatusScheduled  GameStatus = "scheduled"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusCompleted  GameStatus = "completed"
)

type Game struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string     `json:"name" gorm:"not null"`
	Status      GameStatus `json:"status" gorm:"not null;default:'scheduled'"`
	PlayedAt    *time.Time `json:"playedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`

	// Relations
	Teams []Team `json:"teams,omitempty" gorm:"foreignKey:GameID"`
}

// Team is one side of a game. Position fixes the iteration order used for
// tie-breaking between teams.
type Team struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	GameID   uuid.UUID `json:"gameId" gorm:"type:uuid;not null;index"`
	Name     string    `json:"name" gorm:"not null"`
	Position int       `json:"position" gorm:"not null;default:0"`
}

type Player struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DisplayName string    `json:"displayName" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
}
