package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type AchievementDefinition struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string    `json:"name" gorm:"uniqueIndex;not null"`
	Description  string    `json:"description"`
	MeritReward  int       `json:"meritReward" gorm:"not null;default:0"`
	IsStreak     bool      `json:"isStreak" gorm:"not null;default:false"`
	StreakType   *string   `json:"streakType"`
	StreakLength *int      `json:"streakLength"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TableName returns the table name for GORM
func (AchievementDefinition) TableName() string {
	return "achievement_definitions"
}

type KpiWinner struct {
	KpiID    uuid.UUID       `json:"kpiId"`
	KpiName  string          `json:"kpiName"`
	PlayerID uuid.UUID       `json:"playerId"`
	Value    decimal.Decimal `json:"value"`
}

type TeamLeaderMvp struct {
	TeamID   uuid.UUID       `json:"teamId"`
	PlayerID uuid.UUID       `json:"playerId"`
	Score    decimal.Decimal `json:"score"`
}

type PodiumFinisher struct {
	PlayerID uuid.UUID       `json:"playerId"`
	Rank     int             `json:"rank"`
	Score    decimal.Decimal `json:"score"`
}

type PlayerPerformance struct {
	PlayerID   uuid.UUID                     `json:"playerId"`
	TeamID     *uuid.UUID                    `json:"teamId"`
	TotalScore decimal.Decimal               `json:"totalScore"`
	KpiTotals  map[uuid.UUID]decimal.Decimal `json:"kpiTotals"`
}

type TeamScore struct {
	TeamID uuid.UUID       `json:"teamId"`
	Score  decimal.Decimal `json:"score"`
}

// GameAchievementsSummary is written once per game. The unique index on
// game_id is the guard of record against double finalization.
type GameAchievementsSummary struct {
	ID                 uuid.UUID                              `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	GameID             uuid.UUID                              `json:"gameId" gorm:"type:uuid;uniqueIndex;not null"`
	OverallMvpPlayerID *uuid.UUID                             `json:"overallMvpPlayerId" gorm:"type:uuid"`
	WinningTeamID      *uuid.UUID                             `json:"winningTeamId" gorm:"type:uuid"`
	KpiWinners         datatypes.JSONSlice[KpiWinner]         `json:"kpiWinners" gorm:"type:jsonb"`
	TeamLeaderMvps     datatypes.JSONSlice[TeamLeaderMvp]     `json:"teamLeaderMvps" gorm:"type:jsonb"`
	PodiumFinishers    datatypes.JSONSlice[PodiumFinisher]    `json:"podiumFinishers" gorm:"type:jsonb"`
	PerformanceData    datatypes.JSONSlice[PlayerPerformance] `json:"performanceData" gorm:"type:jsonb"`
	TeamScores         datatypes.JSONSlice[TeamScore]         `json:"teamScores" gorm:"type:jsonb"`
	CreatedAt          time.Time                              `json:"createdAt"`
}

// TableName returns the table name for GORM
func (GameAchievementsSummary) TableName() string {
	return "game_achievements"
}
