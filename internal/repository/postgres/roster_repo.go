package postgres

import (
	"context"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type rosterRepository struct {
	db *gorm.DB
}

func NewRosterRepository(db *gorm.DB) *rosterRepository {
	return &rosterRepository{db: db}
}

func (r *rosterRepository) CreateTeam(ctx context.Context, team *domain.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *rosterRepository) CreatePick(ctx context.Context, pick *domain.DraftPick) error {
	return r.db.WithContext(ctx).Create(pick).Error
}

func (r *rosterRepository) GetTeamsByGameID(ctx context.Context, gameID uuid.UUID) ([]domain.Team, error) {
	var teams []domain.Team
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("position ASC").
		Order("id ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *rosterRepository) GetPicksByGameID(ctx context.Context, gameID uuid.UUID) ([]domain.DraftPick, error) {
	var picks []domain.DraftPick
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("pick_number ASC").
		Order("id ASC").
		Find(&picks).Error
	if err != nil {
		return nil, err
	}
	return picks, nil
}
