package service

import (
	"github.com/dom/squad-dashboard/internal/config"
	"github.com/dom/squad-dashboard/internal/repository"
	"github.com/rs/zerolog"
)

type Services struct {
	Auth         *AuthService
	Finalization *FinalizationService
	Merit        *MeritService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, locker GameLocker, notifier FinalizationNotifier, log zerolog.Logger) *Services {
	return &Services{
		Auth:         NewAuthService(cfg),
		Finalization: NewFinalizationService(repos, locker, notifier, cfg.StrictMeritCatalog, log),
		Merit:        NewMeritService(repos),
	}
}
