package repository

import (
	"context"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/google/uuid"
)

type GameRepository interface {
	Create(ctx context.Context, game *domain.Game) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Game, error)
	Update(ctx context.Context, game *domain.Game) error
}

type RosterRepository interface {
	CreateTeam(ctx context.Context, team *domain.Team) error
	CreatePick(ctx context.Context, pick *domain.DraftPick) error
	GetTeamsByGameID(ctx context.Context, gameID uuid.UUID) ([]domain.Team, error)
	GetPicksByGameID(ctx context.Context, gameID uuid.UUID) ([]domain.DraftPick, error)
}

type PlayerRepository interface {
	Create(ctx context.Context, player *domain.Player) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error)
}

type PlayerStatRepository interface {
	Create(ctx context.Context, stat *domain.PlayerStat) error
	GetByGameID(ctx context.Context, gameID uuid.UUID) ([]domain.PlayerStat, error)
}

type KpiRepository interface {
	Create(ctx context.Context, kpi *domain.Kpi) error
	GetAll(ctx context.Context) ([]domain.Kpi, error)
}

type AchievementDefinitionRepository interface {
	Upsert(ctx context.Context, def *domain.AchievementDefinition) error
	GetAll(ctx context.Context) ([]domain.AchievementDefinition, error)
}

type AchievementSummaryRepository interface {
	// Create inserts the summary once per game. A second insert for the same
	// game fails with domain.ErrSummaryExists.
	Create(ctx context.Context, summary *domain.GameAchievementsSummary) error
	ExistsByGameID(ctx context.Context, gameID uuid.UUID) (bool, error)
	// GetByGameID returns domain.ErrNotFinalized when the game has no summary.
	GetByGameID(ctx context.Context, gameID uuid.UUID) (*domain.GameAchievementsSummary, error)
}

type MeritTransactionRepository interface {
	// CreateBatch inserts all rows in one statement. Rows whose id already
	// exists are ignored; the returned count is the number actually inserted.
	CreateBatch(ctx context.Context, txs []domain.MeritTransaction) (int64, error)
	ListByGameID(ctx context.Context, gameID uuid.UUID) ([]domain.MeritTransaction, error)
	ExistsByGameID(ctx context.Context, gameID uuid.UUID) (bool, error)
	ListByPlayerID(ctx context.Context, playerID uuid.UUID, limit, offset int) ([]domain.MeritTransaction, error)
	BalanceByPlayerID(ctx context.Context, playerID uuid.UUID) (int64, error)
}

type Repositories struct {
	Game                  GameRepository
	Roster                RosterRepository
	Player                PlayerRepository
	PlayerStat            PlayerStatRepository
	Kpi                   KpiRepository
	AchievementDefinition AchievementDefinitionRepository
	AchievementSummary    AchievementSummaryRepository
	MeritTransaction      MeritTransactionRepository
}
