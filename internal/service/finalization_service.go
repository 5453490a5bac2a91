package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/dom/squad-dashboard/internal/merit"
	"github.com/dom/squad-dashboard/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// FinalizationResult is the outcome of one FinalizeGame call that got past
// its preconditions. Write failures are reported here, not as errors.
type FinalizationResult struct {
	GameID           uuid.UUID
	State            domain.FinalizationState
	Summary          *domain.GameAchievementsSummary
	TransactionCount int
	// Skipped is set when no player scored, so nothing was written.
	Skipped  bool
	Warnings []merit.IntegrityWarning
	Err      error
}

func (r *FinalizationResult) Message() string {
	switch r.State {
	case domain.FinalizationAlreadyFinalized:
		return "game was already finalized"
	case domain.FinalizationSuccess:
		if r.Skipped {
			return "no player scored; nothing to finalize"
		}
		return fmt.Sprintf("game finalized with %d merit transactions", r.TransactionCount)
	case domain.FinalizationSummaryWriteFailed:
		return fmt.Sprintf("failed to save achievements: %v", r.Err)
	case domain.FinalizationTransactionWriteFailed:
		return fmt.Sprintf("achievements saved but merits failed, reconciliation required: %v", r.Err)
	}
	return string(r.State)
}

// ReconcileResult reports a merit reconciliation run.
type ReconcileResult struct {
	GameID   uuid.UUID `json:"gameId"`
	Expected int       `json:"expected"`
	Inserted int64     `json:"inserted"`
}

type FinalizationService struct {
	games         repository.GameRepository
	roster        repository.RosterRepository
	stats         repository.PlayerStatRepository
	kpis          repository.KpiRepository
	definitions   repository.AchievementDefinitionRepository
	summaries     repository.AchievementSummaryRepository
	merits        repository.MeritTransactionRepository
	locker        GameLocker
	tracker       *statusTracker
	strictCatalog bool
	log           zerolog.Logger
}

func NewFinalizationService(repos *repository.Repositories, locker GameLocker, notifier FinalizationNotifier, strictCatalog bool, log zerolog.Logger) *FinalizationService {
	if locker == nil {
		locker = NewMemoryLocker()
	}
	return &FinalizationService{
		games:         repos.Game,
		roster:        repos.Roster,
		stats:         repos.PlayerStat,
		kpis:          repos.Kpi,
		definitions:   repos.AchievementDefinition,
		summaries:     repos.AchievementSummary,
		merits:        repos.MeritTransaction,
		locker:        locker,
		tracker:       newStatusTracker(notifier),
		strictCatalog: strictCatalog,
		log:           log.With().Str("service", "finalization").Logger(),
	}
}

type finalizationInputs struct {
	stats []domain.PlayerStat
	kpis  []domain.Kpi
	teams []domain.Team
	picks []domain.DraftPick
}

// FinalizeGame converts a completed game's stats into its achievements
// summary and merit ledger, writing each at most once.
//
// Errors are returned only when a precondition fails: the finalization lock is
// held, the catalog is missing, the game is unknown or not completed, or an
// input could not be read. Nothing has been written in those cases.
func (s *FinalizationService) FinalizeGame(ctx context.Context, gameID uuid.UUID) (*FinalizationResult, error) {
	log := s.log.With().Str("game_id", gameID.String()).Logger()

	release, err := s.locker.TryAcquire(ctx, gameID)
	if err != nil {
		return nil, err
	}
	defer release()

	s.tracker.set(gameID, domain.FinalizationComputing, "computing achievements")

	result, err := s.finalize(ctx, gameID, log)
	if err != nil {
		log.Error().Err(err).Msg("finalization aborted")
		s.tracker.set(gameID, domain.FinalizationNotStarted, fmt.Sprintf("finalization failed: %v", err))
		return nil, err
	}

	s.tracker.set(gameID, result.State, result.Message())
	return result, nil
}

func (s *FinalizationService) finalize(ctx context.Context, gameID uuid.UUID, log zerolog.Logger) (*FinalizationResult, error) {
	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != domain.GameStatusCompleted {
		return nil, domain.ErrGameNotCompleted
	}

	exists, err := s.summaries.ExistsByGameID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("check existing summary: %w", err)
	}
	if exists {
		partial, err := s.missingMerits(ctx, catalog, gameID)
		if err != nil {
			return nil, err
		}
		if partial {
			log.Warn().Msg("game already finalized but its merit transactions are missing, reconciliation required")
			s.tracker.markPartial(gameID)
		} else {
			log.Info().Msg("game already finalized")
		}
		return &FinalizationResult{GameID: gameID, State: domain.FinalizationAlreadyFinalized}, nil
	}

	in, err := s.loadInputs(ctx, gameID)
	if err != nil {
		return nil, err
	}

	roster := merit.NewRoster(in.teams, in.picks)
	agg := merit.AggregateStats(in.stats, in.kpis, roster, log)
	ach := merit.CalculateAchievements(agg, roster, in.kpis)
	txs, warnings := catalog.BuildTransactions(gameID, ach)
	s.logWarnings(log, warnings)

	result := &FinalizationResult{GameID: gameID, Warnings: warnings}

	if ach == nil {
		log.Info().Int("stat_entries", len(in.stats)).Msg("no positive scores, calculation skipped")
		result.State = domain.FinalizationSuccess
		result.Skipped = true
		return result, nil
	}

	// Once the summary write starts, the run must reach a terminal state even
	// if the caller goes away.
	writeCtx := context.WithoutCancel(ctx)

	summary := ach.Summary(gameID)
	if err := s.summaries.Create(writeCtx, summary); err != nil {
		if errors.Is(err, domain.ErrSummaryExists) {
			log.Info().Msg("summary written concurrently, treating as already finalized")
			return &FinalizationResult{GameID: gameID, State: domain.FinalizationAlreadyFinalized}, nil
		}
		log.Error().Err(err).Msg("failed to write achievements summary")
		result.State = domain.FinalizationSummaryWriteFailed
		result.Err = fmt.Errorf("write achievements summary: %w", err)
		return result, nil
	}
	result.Summary = summary

	if len(txs) > 0 {
		s.tracker.set(gameID, domain.FinalizationWritingTransactions, "writing merit transactions")
		if _, err := s.merits.CreateBatch(writeCtx, txs); err != nil {
			log.Error().Err(err).Int("transactions", len(txs)).Msg("summary persisted but merit transactions failed, game needs reconciliation")
			result.State = domain.FinalizationTransactionWriteFailed
			result.Err = fmt.Errorf("write merit transactions: %w", err)
			return result, nil
		}
	}

	result.State = domain.FinalizationSuccess
	result.TransactionCount = len(txs)
	log.Info().
		Str("mvp", ach.OverallMvpPlayerID.String()).
		Int("transactions", len(txs)).
		Int("skipped_entries", agg.SkippedEntries).
		Msg("game finalized")
	return result, nil
}

// ReconcileMerits re-inserts the merit ledger of a game whose summary exists.
// Rows that are already present are left untouched, so it is safe to re-run.
func (s *FinalizationService) ReconcileMerits(ctx context.Context, gameID uuid.UUID) (*ReconcileResult, error) {
	log := s.log.With().Str("game_id", gameID.String()).Logger()

	release, err := s.locker.TryAcquire(ctx, gameID)
	if err != nil {
		return nil, err
	}
	defer release()

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	txs, warnings, err := s.rebuildLedger(ctx, catalog, gameID)
	if err != nil {
		return nil, err
	}
	s.logWarnings(log, warnings)

	s.tracker.set(gameID, domain.FinalizationWritingTransactions, "reconciling merit transactions")

	inserted, err := s.merits.CreateBatch(context.WithoutCancel(ctx), txs)
	if err != nil {
		log.Error().Err(err).Msg("merit reconciliation failed")
		s.tracker.set(gameID, domain.FinalizationTransactionWriteFailed, fmt.Sprintf("merit reconciliation failed: %v", err))
		return nil, fmt.Errorf("write merit transactions: %w", err)
	}

	log.Info().Int("expected", len(txs)).Int64("inserted", inserted).Msg("merits reconciled")
	s.tracker.set(gameID, domain.FinalizationSuccess, fmt.Sprintf("merits reconciled, %d transactions restored", inserted))

	return &ReconcileResult{GameID: gameID, Expected: len(txs), Inserted: inserted}, nil
}

// Status returns the latest finalization status of a game. Without a run in
// this process it is derived from whether a summary exists.
func (s *FinalizationService) Status(ctx context.Context, gameID uuid.UUID) (domain.FinalizationStatus, error) {
	if status, ok := s.tracker.get(gameID); ok {
		return status, nil
	}

	if _, err := s.games.GetByID(ctx, gameID); err != nil {
		return domain.FinalizationStatus{}, err
	}

	exists, err := s.summaries.ExistsByGameID(ctx, gameID)
	if err != nil {
		return domain.FinalizationStatus{}, err
	}

	status := domain.FinalizationStatus{GameID: gameID, State: domain.FinalizationNotStarted, TriggerEnabled: true}
	if !exists {
		return status, nil
	}

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return domain.FinalizationStatus{}, err
	}
	partial, err := s.missingMerits(ctx, catalog, gameID)
	if err != nil {
		return domain.FinalizationStatus{}, err
	}
	if partial {
		status.State = domain.FinalizationTransactionWriteFailed
		status.TriggerEnabled = false
		status.Message = "achievements saved but merit transactions are missing, reconciliation required"
		return status, nil
	}

	status.State = domain.FinalizationAlreadyFinalized
	status.Message = "game was already finalized"
	return status, nil
}

// missingMerits reports whether a finalized game has no ledger rows although
// its stored summary calls for some. The ledger batch is a single insert, so a
// game either has all of its rows or none.
func (s *FinalizationService) missingMerits(ctx context.Context, catalog *merit.RewardCatalog, gameID uuid.UUID) (bool, error) {
	has, err := s.merits.ExistsByGameID(ctx, gameID)
	if err != nil {
		return false, fmt.Errorf("check merit transactions: %w", err)
	}
	if has {
		return false, nil
	}
	txs, _, err := s.rebuildLedger(ctx, catalog, gameID)
	if err != nil {
		return false, err
	}
	return len(txs) > 0, nil
}

// rebuildLedger recomputes a finalized game's merit transactions from its
// stored summary and current roster.
func (s *FinalizationService) rebuildLedger(ctx context.Context, catalog *merit.RewardCatalog, gameID uuid.UUID) ([]domain.MeritTransaction, []merit.IntegrityWarning, error) {
	summary, err := s.summaries.GetByGameID(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}

	var teams []domain.Team
	var picks []domain.DraftPick
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		teams, err = s.roster.GetTeamsByGameID(gctx, gameID)
		return err
	})
	g.Go(func() (err error) {
		picks, err = s.roster.GetPicksByGameID(gctx, gameID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("load roster: %w", err)
	}

	ach := merit.AchievementsFromSummary(summary, merit.NewRoster(teams, picks))
	txs, warnings := catalog.BuildTransactions(gameID, ach)
	return txs, warnings, nil
}

func (s *FinalizationService) logWarnings(log zerolog.Logger, warnings []merit.IntegrityWarning) {
	for _, w := range warnings {
		log.Warn().Str("achievement", w.Kind.CatalogName()).Int("fallback_amount", w.FallbackAmount).Msg(w.String())
	}
}

func (s *FinalizationService) loadCatalog(ctx context.Context) (*merit.RewardCatalog, error) {
	defs, err := s.definitions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load achievement definitions: %w", err)
	}
	return merit.NewRewardCatalog(defs, s.strictCatalog)
}

func (s *FinalizationService) loadInputs(ctx context.Context, gameID uuid.UUID) (*finalizationInputs, error) {
	in := &finalizationInputs{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		in.stats, err = s.stats.GetByGameID(gctx, gameID)
		return err
	})
	g.Go(func() (err error) {
		in.kpis, err = s.kpis.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		in.teams, err = s.roster.GetTeamsByGameID(gctx, gameID)
		return err
	})
	g.Go(func() (err error) {
		in.picks, err = s.roster.GetPicksByGameID(gctx, gameID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load finalization inputs: %w", err)
	}
	return in, nil
}
