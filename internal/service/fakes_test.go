package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/dom/squad-dashboard/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory backing for every repository the finalization
// service reads and writes, with hooks for injecting write failures.
type fakeStore struct {
	mu sync.Mutex

	games     map[uuid.UUID]*domain.Game
	players   map[uuid.UUID]*domain.Player
	teams     []domain.Team
	picks     []domain.DraftPick
	stats     []domain.PlayerStat
	kpis      []domain.Kpi
	defs      []domain.AchievementDefinition
	summaries map[uuid.UUID]*domain.GameAchievementsSummary
	txs       []domain.MeritTransaction

	summaryErr         error
	batchErr           error
	statsErr           error
	onSummaryCreate    func()
	afterSummaryCreate func()

	summaryCreates int
	batchCalls     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		games:     make(map[uuid.UUID]*domain.Game),
		players:   make(map[uuid.UUID]*domain.Player),
		summaries: make(map[uuid.UUID]*domain.GameAchievementsSummary),
	}
}

func (s *fakeStore) repos() *repository.Repositories {
	return &repository.Repositories{
		Game:                  fakeGames{s},
		Roster:                fakeRoster{s},
		Player:                fakePlayers{s},
		PlayerStat:            fakeStats{s},
		Kpi:                   fakeKpis{s},
		AchievementDefinition: fakeDefs{s},
		AchievementSummary:    fakeSummaries{s},
		MeritTransaction:      fakeMerits{s},
	}
}

func (s *fakeStore) summaryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.summaries)
}

func (s *fakeStore) txCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}

type fakeGames struct{ s *fakeStore }

func (f fakeGames) Create(_ context.Context, game *domain.Game) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.games[game.ID] = game
	return nil
}

func (f fakeGames) GetByID(_ context.Context, id uuid.UUID) (*domain.Game, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	game, ok := f.s.games[id]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return game, nil
}

func (f fakeGames) Update(ctx context.Context, game *domain.Game) error {
	return f.Create(ctx, game)
}

type fakeRoster struct{ s *fakeStore }

func (f fakeRoster) CreateTeam(_ context.Context, team *domain.Team) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.teams = append(f.s.teams, *team)
	return nil
}

func (f fakeRoster) CreatePick(_ context.Context, pick *domain.DraftPick) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.picks = append(f.s.picks, *pick)
	return nil
}

func (f fakeRoster) GetTeamsByGameID(_ context.Context, gameID uuid.UUID) ([]domain.Team, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.Team
	for _, t := range f.s.teams {
		if t.GameID == gameID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f fakeRoster) GetPicksByGameID(_ context.Context, gameID uuid.UUID) ([]domain.DraftPick, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.DraftPick
	for _, p := range f.s.picks {
		if p.GameID == gameID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakePlayers struct{ s *fakeStore }

func (f fakePlayers) Create(_ context.Context, player *domain.Player) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.players[player.ID] = player
	return nil
}

func (f fakePlayers) GetByID(_ context.Context, id uuid.UUID) (*domain.Player, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	player, ok := f.s.players[id]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return player, nil
}

type fakeStats struct{ s *fakeStore }

func (f fakeStats) Create(_ context.Context, stat *domain.PlayerStat) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.stats = append(f.s.stats, *stat)
	return nil
}

func (f fakeStats) GetByGameID(_ context.Context, gameID uuid.UUID) ([]domain.PlayerStat, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.statsErr != nil {
		return nil, f.s.statsErr
	}
	var out []domain.PlayerStat
	for _, st := range f.s.stats {
		if st.GameID == gameID {
			out = append(out, st)
		}
	}
	return out, nil
}

type fakeKpis struct{ s *fakeStore }

func (f fakeKpis) Create(_ context.Context, kpi *domain.Kpi) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.kpis = append(f.s.kpis, *kpi)
	return nil
}

func (f fakeKpis) GetAll(context.Context) ([]domain.Kpi, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return append([]domain.Kpi(nil), f.s.kpis...), nil
}

type fakeDefs struct{ s *fakeStore }

func (f fakeDefs) Upsert(_ context.Context, def *domain.AchievementDefinition) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.defs = append(f.s.defs, *def)
	return nil
}

func (f fakeDefs) GetAll(context.Context) ([]domain.AchievementDefinition, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return append([]domain.AchievementDefinition(nil), f.s.defs...), nil
}

type fakeSummaries struct{ s *fakeStore }

func (f fakeSummaries) Create(ctx context.Context, summary *domain.GameAchievementsSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.s.mu.Lock()
	hook := f.s.onSummaryCreate
	f.s.onSummaryCreate = nil
	f.s.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.s.mu.Lock()
	f.s.summaryCreates++
	if err := f.s.summaryErr; err != nil {
		f.s.mu.Unlock()
		return err
	}
	if _, ok := f.s.summaries[summary.GameID]; ok {
		f.s.mu.Unlock()
		return domain.ErrSummaryExists
	}
	f.s.summaries[summary.GameID] = summary
	after := f.s.afterSummaryCreate
	f.s.afterSummaryCreate = nil
	f.s.mu.Unlock()

	if after != nil {
		after()
	}
	return nil
}

func (f fakeSummaries) ExistsByGameID(_ context.Context, gameID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	_, ok := f.s.summaries[gameID]
	return ok, nil
}

func (f fakeSummaries) GetByGameID(_ context.Context, gameID uuid.UUID) (*domain.GameAchievementsSummary, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	summary, ok := f.s.summaries[gameID]
	if !ok {
		return nil, domain.ErrNotFinalized
	}
	return summary, nil
}

type fakeMerits struct{ s *fakeStore }

func (f fakeMerits) CreateBatch(ctx context.Context, txs []domain.MeritTransaction) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.batchCalls++
	if f.s.batchErr != nil {
		return 0, f.s.batchErr
	}

	seen := make(map[uuid.UUID]bool, len(f.s.txs))
	for _, tx := range f.s.txs {
		seen[tx.ID] = true
	}
	var inserted int64
	for _, tx := range txs {
		if seen[tx.ID] {
			continue
		}
		seen[tx.ID] = true
		f.s.txs = append(f.s.txs, tx)
		inserted++
	}
	return inserted, nil
}

func (f fakeMerits) ListByGameID(_ context.Context, gameID uuid.UUID) ([]domain.MeritTransaction, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.MeritTransaction
	for _, tx := range f.s.txs {
		if tx.SourceGameID == gameID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f fakeMerits) ExistsByGameID(_ context.Context, gameID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, tx := range f.s.txs {
		if tx.SourceGameID == gameID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeMerits) ListByPlayerID(_ context.Context, playerID uuid.UUID, limit, offset int) ([]domain.MeritTransaction, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.MeritTransaction
	for _, tx := range f.s.txs {
		if tx.PlayerID == playerID {
			out = append(out, tx)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeMerits) BalanceByPlayerID(_ context.Context, playerID uuid.UUID) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var total int64
	for _, tx := range f.s.txs {
		if tx.PlayerID == playerID {
			total += int64(tx.Amount)
		}
	}
	return total, nil
}

// recordingNotifier captures every status change in order.
type recordingNotifier struct {
	mu       sync.Mutex
	statuses []domain.FinalizationStatus
}

func (n *recordingNotifier) FinalizationChanged(status domain.FinalizationStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, status)
}

func (n *recordingNotifier) states() []domain.FinalizationState {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.FinalizationState, len(n.statuses))
	for i, st := range n.statuses {
		out[i] = st.State
	}
	return out
}

// gameFixture seeds a completed game with two teams and three players:
// alice 30 and bob 20 on red, cara 10 on blue, all scored on one KPI.
type gameFixture struct {
	gameID uuid.UUID
	red    uuid.UUID
	blue   uuid.UUID
	alice  uuid.UUID
	bob    uuid.UUID
	cara   uuid.UUID
	goals  uuid.UUID
}

func seedGame(t *testing.T, s *fakeStore, status domain.GameStatus) gameFixture {
	t.Helper()

	f := gameFixture{
		gameID: uuid.New(),
		red:    uuid.New(),
		blue:   uuid.New(),
		alice:  uuid.New(),
		bob:    uuid.New(),
		cara:   uuid.New(),
		goals:  uuid.New(),
	}

	s.games[f.gameID] = &domain.Game{ID: f.gameID, Name: "Friday scrim", Status: status}
	s.teams = append(s.teams,
		domain.Team{ID: f.red, GameID: f.gameID, Name: "Red", Position: 0},
		domain.Team{ID: f.blue, GameID: f.gameID, Name: "Blue", Position: 1},
	)
	s.kpis = append(s.kpis, domain.Kpi{ID: f.goals, Name: "Goals", PointsPerUnit: decimal.NewFromInt(1)})

	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	for i, p := range []struct {
		id    uuid.UUID
		team  uuid.UUID
		value int64
	}{
		{f.alice, f.red, 30},
		{f.bob, f.red, 20},
		{f.cara, f.blue, 10},
	} {
		s.players[p.id] = &domain.Player{ID: p.id, DisplayName: p.id.String()[:8]}
		s.picks = append(s.picks, domain.DraftPick{ID: uuid.New(), GameID: f.gameID, TeamID: p.team, PlayerID: p.id, PickNumber: i + 1})
		s.stats = append(s.stats, domain.PlayerStat{
			ID:           uuid.New(),
			GameID:       f.gameID,
			PlayerID:     p.id,
			KpiID:        f.goals,
			Value:        decimal.NewFromInt(p.value),
			DateRecorded: base.Add(time.Duration(i) * time.Minute),
		})
	}

	return f
}

func seedCatalog(s *fakeStore) {
	for _, def := range []struct {
		name   string
		reward int
	}{
		{"Overall Game MVP", 500},
		{"Podium Finisher (2nd/3rd Place)", 200},
		{"KPI Achiever", 250},
		{"Winning Team Member", 100},
		{"Team Leader MVP", 300},
	} {
		s.defs = append(s.defs, domain.AchievementDefinition{ID: uuid.New(), Name: def.name, MeritReward: def.reward})
	}
}
