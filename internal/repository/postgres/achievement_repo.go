package postgres

import (
	"context"
	"errors"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type achievementDefinitionRepository struct {
	db *gorm.DB
}

func NewAchievementDefinitionRepository(db *gorm.DB) *achievementDefinitionRepository {
	return &achievementDefinitionRepository{db: db}
}

func (r *achievementDefinitionRepository) Upsert(ctx context.Context, def *domain.AchievementDefinition) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "merit_reward", "is_streak", "streak_type", "streak_length"}),
	}).Create(def).Error
}

func (r *achievementDefinitionRepository) GetAll(ctx context.Context) ([]domain.AchievementDefinition, error) {
	var defs []domain.AchievementDefinition
	err := r.db.WithContext(ctx).Order("name ASC").Find(&defs).Error
	if err != nil {
		return nil, err
	}
	return defs, nil
}

type achievementSummaryRepository struct {
	db *gorm.DB
}

func NewAchievementSummaryRepository(db *gorm.DB) *achievementSummaryRepository {
	return &achievementSummaryRepository{db: db}
}

func (r *achievementSummaryRepository) Create(ctx context.Context, summary *domain.GameAchievementsSummary) error {
	err := r.db.WithContext(ctx).Create(summary).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrSummaryExists
	}
	return err
}

func (r *achievementSummaryRepository) ExistsByGameID(ctx context.Context, gameID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.GameAchievementsSummary{}).
		Where("game_id = ?", gameID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *achievementSummaryRepository) GetByGameID(ctx context.Context, gameID uuid.UUID) (*domain.GameAchievementsSummary, error) {
	var summary domain.GameAchievementsSummary
	err := r.db.WithContext(ctx).First(&summary, "game_id = ?", gameID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFinalized
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
