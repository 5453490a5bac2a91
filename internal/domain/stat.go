package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kpi is a tracked player statistic with a point multiplier.
type Kpi struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name          string          `json:"name" gorm:"not null"`
	PointsPerUnit decimal.Decimal `json:"pointsPerUnit" gorm:"type:numeric(12,4);not null"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// PlayerStat is a single raw stat entry recorded for a player in a game.
type PlayerStat struct {
	ID           uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	GameID       uuid.UUID       `json:"gameId" gorm:"type:uuid;not null;index"`
	PlayerID     uuid.UUID       `json:"playerId" gorm:"type:uuid;not null"`
	KpiID        uuid.UUID       `json:"kpiId" gorm:"type:uuid;not null"`
	TeamID       *uuid.UUID      `json:"teamId" gorm:"type:uuid"`
	Value        decimal.Decimal `json:"value" gorm:"type:numeric(12,4);not null"`
	DateRecorded time.Time       `json:"dateRecorded" gorm:"not null"`
}

// TableName returns the table name for GORM
func (PlayerStat) TableName() string {
	return "player_stats"
}
