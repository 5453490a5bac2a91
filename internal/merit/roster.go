package merit

import (
	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/google/uuid"
)

// TeamRoster lists the players drafted onto a team, in pick order.
type TeamRoster struct {
	TeamID    uuid.UUID
	PlayerIDs []uuid.UUID
}

// Roster is the player/team assignment for one game. Teams keep the order
// they were given in, which is the tie-break order for team rankings.
type Roster struct {
	Teams  []TeamRoster
	teamOf map[uuid.UUID]uuid.UUID
}

// NewRoster builds a roster from teams (ordered by position) and draft picks
// (ordered by pick number). Picks referencing a team that is not listed add
// that team after the listed ones.
func NewRoster(teams []domain.Team, picks []domain.DraftPick) *Roster {
	r := &Roster{teamOf: make(map[uuid.UUID]uuid.UUID)}
	index := make(map[uuid.UUID]int, len(teams))
	for _, t := range teams {
		if _, ok := index[t.ID]; ok {
			continue
		}
		index[t.ID] = len(r.Teams)
		r.Teams = append(r.Teams, TeamRoster{TeamID: t.ID})
	}

	for _, p := range picks {
		if _, ok := r.teamOf[p.PlayerID]; ok {
			continue
		}
		i, ok := index[p.TeamID]
		if !ok {
			i = len(r.Teams)
			index[p.TeamID] = i
			r.Teams = append(r.Teams, TeamRoster{TeamID: p.TeamID})
		}
		r.Teams[i].PlayerIDs = append(r.Teams[i].PlayerIDs, p.PlayerID)
		r.teamOf[p.PlayerID] = p.TeamID
	}

	return r
}

// TeamOf returns the team a player was drafted onto.
func (r *Roster) TeamOf(playerID uuid.UUID) (uuid.UUID, bool) {
	if r == nil {
		return uuid.Nil, false
	}
	teamID, ok := r.teamOf[playerID]
	return teamID, ok
}
