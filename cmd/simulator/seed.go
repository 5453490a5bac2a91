package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/dom/squad-dashboard/internal/merit"
	"github.com/dom/squad-dashboard/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var defaultRewards = map[merit.AchievementKind]int{
	merit.KindOverallMVP:        500,
	merit.KindPodiumFinisher:    200,
	merit.KindKPIAchiever:       250,
	merit.KindWinningTeamMember: 100,
	merit.KindTeamLeaderMVP:     300,
}

var demoKpis = []struct {
	name   string
	points string
}{
	{"Goals", "10"},
	{"Assists", "6"},
	{"Saves", "4"},
	{"Fouls", "-3"},
}

// seedCatalog upserts one definition per achievement kind
func seedCatalog(ctx context.Context, repos *repository.Repositories) error {
	for _, kind := range merit.AllKinds {
		def := &domain.AchievementDefinition{
			ID:          uuid.New(),
			Name:        kind.CatalogName(),
			Description: kind.String(),
			MeritReward: defaultRewards[kind],
		}
		if err := repos.AchievementDefinition.Upsert(ctx, def); err != nil {
			return fmt.Errorf("upsert %q: %w", def.Name, err)
		}
	}
	return nil
}

// seedGame creates a completed game with two drafted teams and random stats
func seedGame(ctx context.Context, repos *repository.Repositories, playersPerTeam int, rng *rand.Rand) (*domain.Game, error) {
	kpis, err := repos.Kpi.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(kpis) == 0 {
		for _, k := range demoKpis {
			kpi := domain.Kpi{ID: uuid.New(), Name: k.name, PointsPerUnit: decimal.RequireFromString(k.points)}
			if err := repos.Kpi.Create(ctx, &kpi); err != nil {
				return nil, fmt.Errorf("create kpi %q: %w", k.name, err)
			}
			kpis = append(kpis, kpi)
		}
	}

	now := time.Now()
	game := &domain.Game{
		ID:          uuid.New(),
		Name:        fmt.Sprintf("Simulated game %s", now.Format("Jan 2 15:04")),
		Status:      domain.GameStatusCompleted,
		PlayedAt:    &now,
		CompletedAt: &now,
	}
	if err := repos.Game.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	pick := 0
	for position, name := range []string{"Home", "Away"} {
		team := &domain.Team{ID: uuid.New(), GameID: game.ID, Name: name, Position: position}
		if err := repos.Roster.CreateTeam(ctx, team); err != nil {
			return nil, fmt.Errorf("create team: %w", err)
		}

		for i := 0; i < playersPerTeam; i++ {
			pick++
			player := &domain.Player{ID: uuid.New(), DisplayName: fmt.Sprintf("%s%d", name, i+1)}
			if err := repos.Player.Create(ctx, player); err != nil {
				return nil, fmt.Errorf("create player: %w", err)
			}
			if err := repos.Roster.CreatePick(ctx, &domain.DraftPick{
				ID:         uuid.New(),
				GameID:     game.ID,
				TeamID:     team.ID,
				PlayerID:   player.ID,
				PickNumber: pick,
			}); err != nil {
				return nil, fmt.Errorf("create pick: %w", err)
			}

			for _, kpi := range kpis {
				value := rng.Intn(5)
				if value == 0 {
					continue
				}
				if err := repos.PlayerStat.Create(ctx, &domain.PlayerStat{
					ID:           uuid.New(),
					GameID:       game.ID,
					PlayerID:     player.ID,
					KpiID:        kpi.ID,
					Value:        decimal.NewFromInt(int64(value)),
					DateRecorded: now.Add(time.Duration(pick) * time.Second),
				}); err != nil {
					return nil, fmt.Errorf("create stat: %w", err)
				}
			}
		}
	}

	return game, nil
}
