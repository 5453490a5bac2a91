package service

import (
	"context"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/dom/squad-dashboard/internal/repository"
	"github.com/google/uuid"
)

const (
	defaultMeritPageSize = 50
	maxMeritPageSize     = 200
)

// MeritService serves the persisted results of finalization.
type MeritService struct {
	games     repository.GameRepository
	players   repository.PlayerRepository
	summaries repository.AchievementSummaryRepository
	merits    repository.MeritTransactionRepository
}

func NewMeritService(repos *repository.Repositories) *MeritService {
	return &MeritService{
		games:     repos.Game,
		players:   repos.Player,
		summaries: repos.AchievementSummary,
		merits:    repos.MeritTransaction,
	}
}

type PlayerMerits struct {
	PlayerID     uuid.UUID                 `json:"playerId"`
	Balance      int64                     `json:"balance"`
	Transactions []domain.MeritTransaction `json:"transactions"`
}

func (s *MeritService) GetAchievements(ctx context.Context, gameID uuid.UUID) (*domain.GameAchievementsSummary, error) {
	if _, err := s.games.GetByID(ctx, gameID); err != nil {
		return nil, err
	}
	return s.summaries.GetByGameID(ctx, gameID)
}

func (s *MeritService) ListGameMerits(ctx context.Context, gameID uuid.UUID) ([]domain.MeritTransaction, error) {
	if _, err := s.games.GetByID(ctx, gameID); err != nil {
		return nil, err
	}
	return s.merits.ListByGameID(ctx, gameID)
}

// ListPlayerMerits returns a page of the player's ledger, newest first, and
// the player's total balance.
func (s *MeritService) ListPlayerMerits(ctx context.Context, playerID uuid.UUID, limit, offset int) (*PlayerMerits, error) {
	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultMeritPageSize
	}
	if limit > maxMeritPageSize {
		limit = maxMeritPageSize
	}
	if offset < 0 {
		offset = 0
	}

	txs, err := s.merits.ListByPlayerID(ctx, playerID, limit, offset)
	if err != nil {
		return nil, err
	}

	balance, err := s.merits.BalanceByPlayerID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return &PlayerMerits{PlayerID: playerID, Balance: balance, Transactions: txs}, nil
}
