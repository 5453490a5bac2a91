package postgres

import (
	"context"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type meritTransactionRepository struct {
	db *gorm.DB
}

func NewMeritTransactionRepository(db *gorm.DB) *meritTransactionRepository {
	return &meritTransactionRepository{db: db}
}

func (r *meritTransactionRepository) CreateBatch(ctx context.Context, txs []domain.MeritTransaction) (int64, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&txs)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *meritTransactionRepository) ListByGameID(ctx context.Context, gameID uuid.UUID) ([]domain.MeritTransaction, error) {
	var txs []domain.MeritTransaction
	err := r.db.WithContext(ctx).
		Where("source_game_id = ?", gameID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *meritTransactionRepository) ExistsByGameID(ctx context.Context, gameID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.MeritTransaction{}).
		Where("source_game_id = ?", gameID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *meritTransactionRepository) ListByPlayerID(ctx context.Context, playerID uuid.UUID, limit, offset int) ([]domain.MeritTransaction, error) {
	var txs []domain.MeritTransaction
	err := r.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("created_at DESC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *meritTransactionRepository) BalanceByPlayerID(ctx context.Context, playerID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.WithContext(ctx).
		Model(&domain.MeritTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("player_id = ?", playerID).
		Scan(&balance).Error
	if err != nil {
		return 0, err
	}
	return balance, nil
}
