package domain

import (
	"time"

	"github.com/google/uuid"
)

// DraftPick assigns a player to a team for a single game.
type DraftPick struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	GameID     uuid.UUID `json:"gameId" gorm:"type:uuid;not null;uniqueIndex:idx_draft_picks_game_player,priority:1"`
	TeamID     uuid.UUID `json:"teamId" gorm:"type:uuid;not null;index"`
	PlayerID   uuid.UUID `json:"playerId" gorm:"type:uuid;not null;uniqueIndex:idx_draft_picks_game_player,priority:2"`
	PickNumber int       `json:"pickNumber" gorm:"not null"`
	PickedAt   time.Time `json:"pickedAt" gorm:"autoCreateTime"`

	// Relations
	Player *Player `json:"player,omitempty" gorm:"foreignKey:PlayerID"`
	Team   *Team   `json:"-" gorm:"foreignKey:TeamID"`
}

// TableName returns the table name for GORM
func (DraftPick) TableName() string {
	return "draft_picks"
}
