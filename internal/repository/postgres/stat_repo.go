package postgres

import (
	"context"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type playerStatRepository struct {
	db *gorm.DB
}

func NewPlayerStatRepository(db *gorm.DB) *playerStatRepository {
	return &playerStatRepository{db: db}
}

func (r *playerStatRepository) Create(ctx context.Context, stat *domain.PlayerStat) error {
	return r.db.WithContext(ctx).Create(stat).Error
}

// GetByGameID returns a game's entries in recording order. That order decides
// ranking tie-breaks, so it must be stable.
func (r *playerStatRepository) GetByGameID(ctx context.Context, gameID uuid.UUID) ([]domain.PlayerStat, error) {
	var stats []domain.PlayerStat
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("date_recorded ASC").
		Order("id ASC").
		Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

type kpiRepository struct {
	db *gorm.DB
}

func NewKpiRepository(db *gorm.DB) *kpiRepository {
	return &kpiRepository{db: db}
}

func (r *kpiRepository) Create(ctx context.Context, kpi *domain.Kpi) error {
	return r.db.WithContext(ctx).Create(kpi).Error
}

func (r *kpiRepository) GetAll(ctx context.Context) ([]domain.Kpi, error) {
	var kpis []domain.Kpi
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("name ASC").
		Find(&kpis).Error
	if err != nil {
		return nil, err
	}
	return kpis, nil
}
