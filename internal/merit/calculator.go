package merit

import (
	"sort"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const podiumSize = 3

// Achievements is the ranked outcome of a game.
type Achievements struct {
	OverallMvpPlayerID uuid.UUID
	WinningTeamID      *uuid.UUID
	WinningTeamMembers []uuid.UUID
	Podium             []domain.PodiumFinisher
	KpiWinners         []domain.KpiWinner
	TeamScores         []domain.TeamScore
	TeamLeaders        []domain.TeamLeaderMvp
	Performance        []domain.PlayerPerformance
}

// CalculateAchievements derives rankings, KPI leaders, team scores and MVPs
// from aggregated stats. It returns nil when no player has a positive score.
//
// Every ranking orders by score descending and breaks ties by the order in
// which players first appear in the aggregate.
func CalculateAchievements(agg *Aggregate, roster *Roster, kpis []domain.Kpi) *Achievements {
	if agg == nil || !hasPositiveScore(agg) {
		return nil
	}

	ranked := rankByScore(agg.Players)

	result := &Achievements{
		OverallMvpPlayerID: ranked[0].PlayerID,
		Performance:        performanceData(agg.Players),
	}

	for i, p := range ranked {
		if i >= podiumSize || !p.TotalScore.IsPositive() {
			break
		}
		result.Podium = append(result.Podium, domain.PodiumFinisher{
			PlayerID: p.PlayerID,
			Rank:     i + 1,
			Score:    p.TotalScore,
		})
	}

	result.KpiWinners = kpiWinners(agg.Players, kpis)

	var best decimal.Decimal
	for _, team := range groupTeams(agg.Players, roster) {
		score := decimal.Zero
		for _, m := range team.scored {
			score = score.Add(m.TotalScore)
		}
		result.TeamScores = append(result.TeamScores, domain.TeamScore{
			TeamID: team.teamID,
			Score:  score,
		})

		// Strictly greater keeps the earlier team on ties.
		if score.IsPositive() && (result.WinningTeamID == nil || score.GreaterThan(best)) {
			teamID := team.teamID
			result.WinningTeamID = &teamID
			result.WinningTeamMembers = team.members
			best = score
		}

		if leader := topScorer(team.scored); leader != nil {
			result.TeamLeaders = append(result.TeamLeaders, domain.TeamLeaderMvp{
				TeamID:   team.teamID,
				PlayerID: leader.PlayerID,
				Score:    leader.TotalScore,
			})
		}
	}

	return result
}

// Summary converts the achievements into the persisted summary row.
func (a *Achievements) Summary(gameID uuid.UUID) *domain.GameAchievementsSummary {
	mvp := a.OverallMvpPlayerID
	return &domain.GameAchievementsSummary{
		ID:                 uuid.NewSHA1(summaryNamespace, []byte(gameID.String())),
		GameID:             gameID,
		OverallMvpPlayerID: &mvp,
		WinningTeamID:      a.WinningTeamID,
		KpiWinners:         a.KpiWinners,
		TeamLeaderMvps:     a.TeamLeaders,
		PodiumFinishers:    a.Podium,
		PerformanceData:    a.Performance,
		TeamScores:         a.TeamScores,
	}
}

func hasPositiveScore(agg *Aggregate) bool {
	for _, p := range agg.Players {
		if p.TotalScore.IsPositive() {
			return true
		}
	}
	return false
}

// rankByScore returns a copy of players sorted by total score descending.
// The stable sort is what preserves first-seen order between equal scores.
func rankByScore(players []*PlayerAggregate) []*PlayerAggregate {
	ranked := make([]*PlayerAggregate, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore.GreaterThan(ranked[j].TotalScore)
	})
	return ranked
}

func kpiWinners(players []*PlayerAggregate, kpis []domain.Kpi) []domain.KpiWinner {
	var winners []domain.KpiWinner
	for _, kpi := range kpis {
		var leader *PlayerAggregate
		var best decimal.Decimal
		for _, p := range players {
			total, ok := p.KpiTotals[kpi.ID]
			if !ok || !total.IsPositive() {
				continue
			}
			if leader == nil || total.GreaterThan(best) {
				leader = p
				best = total
			}
		}
		if leader == nil {
			continue
		}
		winners = append(winners, domain.KpiWinner{
			KpiID:    kpi.ID,
			KpiName:  kpi.Name,
			PlayerID: leader.PlayerID,
			Value:    best,
		})
	}
	return winners
}

// teamGroup is one team and the players counted toward it.
type teamGroup struct {
	teamID uuid.UUID
	// members is everyone on the team, with or without stat entries.
	members []uuid.UUID
	// scored holds the members with stat entries, in aggregate order.
	scored []*PlayerAggregate
}

// groupTeams assigns every aggregated player to the team resolved during
// aggregation, and every drafted player without stat entries to the team
// they were drafted onto. Players without a resolved team belong to no group.
//
// Drafted teams come first in position order; teams known only from stat
// entries follow in the order they were first seen.
func groupTeams(players []*PlayerAggregate, roster *Roster) []*teamGroup {
	var groups []*teamGroup
	byID := make(map[uuid.UUID]*teamGroup)
	group := func(teamID uuid.UUID) *teamGroup {
		g, ok := byID[teamID]
		if !ok {
			g = &teamGroup{teamID: teamID}
			byID[teamID] = g
			groups = append(groups, g)
		}
		return g
	}

	resolved := make(map[uuid.UUID]*uuid.UUID, len(players))
	for _, p := range players {
		resolved[p.PlayerID] = p.TeamID
	}

	listed := make(map[uuid.UUID]bool)
	if roster != nil {
		for _, team := range roster.Teams {
			g := group(team.TeamID)
			for _, id := range team.PlayerIDs {
				teamID, scored := resolved[id]
				if !scored || (teamID != nil && *teamID == team.TeamID) {
					g.members = append(g.members, id)
					listed[id] = true
				}
			}
		}
	}

	for _, p := range players {
		if p.TeamID == nil {
			continue
		}
		g := group(*p.TeamID)
		g.scored = append(g.scored, p)
		if !listed[p.PlayerID] {
			g.members = append(g.members, p.PlayerID)
		}
	}

	return groups
}

func topScorer(players []*PlayerAggregate) *PlayerAggregate {
	var top *PlayerAggregate
	for _, p := range players {
		if !p.TotalScore.IsPositive() {
			continue
		}
		if top == nil || p.TotalScore.GreaterThan(top.TotalScore) {
			top = p
		}
	}
	return top
}

func performanceData(players []*PlayerAggregate) []domain.PlayerPerformance {
	data := make([]domain.PlayerPerformance, len(players))
	for i, p := range players {
		totals := make(map[uuid.UUID]decimal.Decimal, len(p.KpiTotals))
		for k, v := range p.KpiTotals {
			totals[k] = v
		}
		data[i] = domain.PlayerPerformance{
			PlayerID:   p.PlayerID,
			TeamID:     p.TeamID,
			TotalScore: p.TotalScore,
			KpiTotals:  totals,
		}
	}
	return data
}

// AchievementsFromSummary rebuilds the ledger-relevant achievements from a
// stored summary. Winning team membership is regrouped from the stored
// performance data and the current roster.
func AchievementsFromSummary(s *domain.GameAchievementsSummary, roster *Roster) *Achievements {
	if s == nil || s.OverallMvpPlayerID == nil {
		return nil
	}

	a := &Achievements{
		OverallMvpPlayerID: *s.OverallMvpPlayerID,
		WinningTeamID:      s.WinningTeamID,
		Podium:             s.PodiumFinishers,
		KpiWinners:         s.KpiWinners,
		TeamScores:         s.TeamScores,
		TeamLeaders:        s.TeamLeaderMvps,
		Performance:        s.PerformanceData,
	}
	if a.WinningTeamID == nil {
		return a
	}

	players := make([]*PlayerAggregate, len(s.PerformanceData))
	for i, p := range s.PerformanceData {
		players[i] = &PlayerAggregate{PlayerID: p.PlayerID, TeamID: p.TeamID, TotalScore: p.TotalScore}
	}
	for _, g := range groupTeams(players, roster) {
		if g.teamID == *a.WinningTeamID {
			a.WinningTeamMembers = g.members
			break
		}
	}
	return a
}
