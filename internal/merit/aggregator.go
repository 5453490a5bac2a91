package merit

import (
	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PlayerAggregate holds one player's totals for a game. KpiTotals are raw
// units, TotalScore is weighted by each KPI's points per unit.
type PlayerAggregate struct {
	PlayerID   uuid.UUID
	TeamID     *uuid.UUID
	TotalScore decimal.Decimal
	KpiTotals  map[uuid.UUID]decimal.Decimal
}

// Aggregate is the per-player reduction of a game's stat entries. Players
// are kept in the order their first usable entry appeared.
type Aggregate struct {
	Players        []*PlayerAggregate
	SkippedEntries int

	byPlayer map[uuid.UUID]*PlayerAggregate
}

// Get returns the totals for a player, if the player had any usable entry.
func (a *Aggregate) Get(playerID uuid.UUID) (*PlayerAggregate, bool) {
	p, ok := a.byPlayer[playerID]
	return p, ok
}

// Len returns the number of aggregated players.
func (a *Aggregate) Len() int {
	return len(a.Players)
}

// AggregateStats reduces raw stat entries into per-player totals. Entries
// that reference a KPI missing from the catalog are skipped with a warning.
func AggregateStats(entries []domain.PlayerStat, kpis []domain.Kpi, roster *Roster, log zerolog.Logger) *Aggregate {
	kpiByID := make(map[uuid.UUID]domain.Kpi, len(kpis))
	for _, k := range kpis {
		kpiByID[k.ID] = k
	}

	agg := &Aggregate{byPlayer: make(map[uuid.UUID]*PlayerAggregate)}

	for _, entry := range entries {
		kpi, ok := kpiByID[entry.KpiID]
		if !ok {
			agg.SkippedEntries++
			log.Warn().
				Str("stat_id", entry.ID.String()).
				Str("player_id", entry.PlayerID.String()).
				Str("kpi_id", entry.KpiID.String()).
				Msg("skipping stat entry with unknown kpi")
			continue
		}

		p, ok := agg.byPlayer[entry.PlayerID]
		if !ok {
			p = &PlayerAggregate{
				PlayerID:   entry.PlayerID,
				TotalScore: decimal.Zero,
				KpiTotals:  make(map[uuid.UUID]decimal.Decimal),
			}
			agg.byPlayer[entry.PlayerID] = p
			agg.Players = append(agg.Players, p)
		}

		if p.TeamID == nil {
			if entry.TeamID != nil {
				teamID := *entry.TeamID
				p.TeamID = &teamID
			} else if teamID, ok := roster.TeamOf(entry.PlayerID); ok {
				p.TeamID = &teamID
			}
		}

		p.TotalScore = p.TotalScore.Add(entry.Value.Mul(kpi.PointsPerUnit))
		p.KpiTotals[kpi.ID] = p.KpiTotals[kpi.ID].Add(entry.Value)
	}

	return agg
}
