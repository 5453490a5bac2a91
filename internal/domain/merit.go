package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeOverallMVP    TransactionType = "overall_mvp"
	TransactionTypePodiumSecond  TransactionType = "podium_second"
	TransactionTypePodiumThird   TransactionType = "podium_third"
	TransactionTypeKpiBonus      TransactionType = "kpi_bonus"
	TransactionTypeTeamWin       TransactionType = "team_win"
	TransactionTypeTeamLeaderMVP TransactionType = "team_leader_mvp"
)

// MeritTransaction is an append-only ledger row. Player balances are derived
// from these rows elsewhere.
type MeritTransaction struct {
	ID                            uuid.UUID       `json:"id" gorm:"type:uuid;primary_key"`
	PlayerID                      uuid.UUID       `json:"playerId" gorm:"type:uuid;not null;index"`
	Amount                        int             `json:"amount" gorm:"not null;check:amount > 0"`
	TransactionType               TransactionType `json:"transactionType" gorm:"type:varchar(32);not null"`
	SourceAchievementDefinitionID *uuid.UUID      `json:"sourceAchievementDefinitionId" gorm:"type:uuid"`
	SourceGameID                  uuid.UUID       `json:"sourceGameId" gorm:"type:uuid;not null;index"`
	KpiID                         *uuid.UUID      `json:"kpiId" gorm:"type:uuid"`
	Description                   string          `json:"description"`
	CreatedAt                     time.Time       `json:"createdAt"`
}

// TableName returns the table name for GORM
func (MeritTransaction) TableName() string {
	return "merit_transactions"
}
