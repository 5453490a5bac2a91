package postgres

import (
	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/dom/squad-dashboard/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// Unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Game{},
		&domain.Team{},
		&domain.Player{},
		&domain.DraftPick{},
		&domain.Kpi{},
		&domain.PlayerStat{},
		&domain.AchievementDefinition{},
		&domain.GameAchievementsSummary{},
		&domain.MeritTransaction{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Game:                  NewGameRepository(db),
		Roster:                NewRosterRepository(db),
		Player:                NewPlayerRepository(db),
		PlayerStat:            NewPlayerStatRepository(db),
		Kpi:                   NewKpiRepository(db),
		AchievementDefinition: NewAchievementDefinitionRepository(db),
		AchievementSummary:    NewAchievementSummaryRepository(db),
		MeritTransaction:      NewMeritTransactionRepository(db),
	}
}
