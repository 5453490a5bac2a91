package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GameBuilder creates test games with a builder pattern
type GameBuilder struct {
	name   string
	status domain.GameStatus
}

// NewGameBuilder creates a new GameBuilder for a completed game
func NewGameBuilder() *GameBuilder {
	return &GameBuilder{
		name:   fmt.Sprintf("game_%s", uuid.New().String()[:8]),
		status: domain.GameStatusCompleted,
	}
}

// WithName sets the game name
func (b *GameBuilder) WithName(name string) *GameBuilder {
	b.name = name
	return b
}

// WithStatus sets the game status
func (b *GameBuilder) WithStatus(status domain.GameStatus) *GameBuilder {
	b.status = status
	return b
}

// Build creates the game in the database
func (b *GameBuilder) Build(t *testing.T, db *gorm.DB) *domain.Game {
	t.Helper()

	now := time.Now()
	game := &domain.Game{
		ID:        uuid.New(),
		Name:      b.name,
		Status:    b.status,
		PlayedAt:  &now,
		CreatedAt: now,
	}
	if b.status == domain.GameStatusCompleted {
		game.CompletedAt = &now
	}

	if err := db.Create(game).Error; err != nil {
		t.Fatalf("failed to create game: %v", err)
	}

	return game
}

// CreateTeam adds a team to a game
func CreateTeam(t *testing.T, db *gorm.DB, game *domain.Game, name string, position int) *domain.Team {
	t.Helper()

	team := &domain.Team{
		ID:       uuid.New(),
		GameID:   game.ID,
		Name:     name,
		Position: position,
	}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("failed to create team: %v", err)
	}
	return team
}

// CreatePlayer creates a player with the given display name
func CreatePlayer(t *testing.T, db *gorm.DB, displayName string) *domain.Player {
	t.Helper()

	player := &domain.Player{
		ID:          uuid.New(),
		DisplayName: displayName,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(player).Error; err != nil {
		t.Fatalf("failed to create player: %v", err)
	}
	return player
}

// DraftPlayer puts a player on a team's roster for the team's game
func DraftPlayer(t *testing.T, db *gorm.DB, team *domain.Team, player *domain.Player, pickNumber int) *domain.DraftPick {
	t.Helper()

	pick := &domain.DraftPick{
		ID:         uuid.New(),
		GameID:     team.GameID,
		TeamID:     team.ID,
		PlayerID:   player.ID,
		PickNumber: pickNumber,
	}
	if err := db.Create(pick).Error; err != nil {
		t.Fatalf("failed to create draft pick: %v", err)
	}
	return pick
}

// CreateKpi creates a KPI worth points per unit
func CreateKpi(t *testing.T, db *gorm.DB, name, points string) *domain.Kpi {
	t.Helper()

	kpi := &domain.Kpi{
		ID:            uuid.New(),
		Name:          name,
		PointsPerUnit: decimal.RequireFromString(points),
		CreatedAt:     time.Now(),
	}
	if err := db.Create(kpi).Error; err != nil {
		t.Fatalf("failed to create kpi: %v", err)
	}
	return kpi
}

// RecordStat stores one raw stat entry. The team is left empty so it is
// resolved from the roster.
func RecordStat(t *testing.T, db *gorm.DB, game *domain.Game, player *domain.Player, kpiID uuid.UUID, value string, recordedAt time.Time) *domain.PlayerStat {
	t.Helper()

	stat := &domain.PlayerStat{
		ID:           uuid.New(),
		GameID:       game.ID,
		PlayerID:     player.ID,
		KpiID:        kpiID,
		Value:        decimal.RequireFromString(value),
		DateRecorded: recordedAt,
	}
	if err := db.Create(stat).Error; err != nil {
		t.Fatalf("failed to create player stat: %v", err)
	}
	return stat
}

// SeedAchievementCatalog stores the standard non-streak achievement catalog
// plus one streak definition
func SeedAchievementCatalog(t *testing.T, db *gorm.DB) map[string]*domain.AchievementDefinition {
	t.Helper()

	streakType := "mvp"
	streakLength := 3
	defs := []*domain.AchievementDefinition{
		{Name: "Overall Game MVP", MeritReward: 500},
		{Name: "Podium Finisher (2nd/3rd Place)", MeritReward: 200},
		{Name: "KPI Achiever", MeritReward: 250},
		{Name: "Winning Team Member", MeritReward: 100},
		{Name: "Team Leader MVP", MeritReward: 300},
		{Name: "MVP Hat Trick", MeritReward: 1000, IsStreak: true, StreakType: &streakType, StreakLength: &streakLength},
	}

	byName := make(map[string]*domain.AchievementDefinition, len(defs))
	for _, def := range defs {
		def.ID = uuid.New()
		def.CreatedAt = time.Now()
		if err := db.Create(def).Error; err != nil {
			t.Fatalf("failed to create achievement definition %q: %v", def.Name, err)
		}
		byName[def.Name] = def
	}
	return byName
}

// ScoredGame is a completed game with two drafted teams and recorded stats:
// Alice 30 and Bob 20 on Red, Cara 10 on Blue, all on one Goals KPI.
type ScoredGame struct {
	Game  *domain.Game
	Red   *domain.Team
	Blue  *domain.Team
	Alice *domain.Player
	Bob   *domain.Player
	Cara  *domain.Player
	Goals *domain.Kpi
}

// SeedScoredGame creates a ScoredGame. Finalizing it with the standard
// catalog yields eight merit transactions.
func SeedScoredGame(t *testing.T, db *gorm.DB) *ScoredGame {
	t.Helper()

	g := &ScoredGame{Game: NewGameBuilder().WithName("Friday scrim").Build(t, db)}
	g.Red = CreateTeam(t, db, g.Game, "Red", 0)
	g.Blue = CreateTeam(t, db, g.Game, "Blue", 1)
	g.Alice = CreatePlayer(t, db, "alice")
	g.Bob = CreatePlayer(t, db, "bob")
	g.Cara = CreatePlayer(t, db, "cara")
	g.Goals = CreateKpi(t, db, "Goals", "1")

	DraftPlayer(t, db, g.Red, g.Alice, 1)
	DraftPlayer(t, db, g.Blue, g.Cara, 2)
	DraftPlayer(t, db, g.Red, g.Bob, 3)

	base := time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC)
	RecordStat(t, db, g.Game, g.Alice, g.Goals.ID, "30", base)
	RecordStat(t, db, g.Game, g.Bob, g.Goals.ID, "20", base.Add(time.Minute))
	RecordStat(t, db, g.Game, g.Cara, g.Goals.ID, "10", base.Add(2*time.Minute))

	return g
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
