package merit

import (
	"fmt"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/google/uuid"
)

var (
	ledgerNamespace  = uuid.MustParse("6f1c7a0e-3b8d-4c2a-9e51-2d7b0c4f8a13")
	summaryNamespace = uuid.MustParse("b2e4d7c1-8a5f-4e39-a0c6-71f3d9e2b584")
)

// TransactionID derives a stable id from the transaction's content so that
// re-inserting the same ledger for a game cannot create duplicates.
func TransactionID(gameID uuid.UUID, t domain.TransactionType, playerID uuid.UUID, kpiID *uuid.UUID) uuid.UUID {
	key := fmt.Sprintf("%s|%s|%s", gameID, t, playerID)
	if kpiID != nil {
		key += "|" + kpiID.String()
	}
	return uuid.NewSHA1(ledgerNamespace, []byte(key))
}

type ledgerBuilder struct {
	gameID   uuid.UUID
	catalog  *RewardCatalog
	txs      []domain.MeritTransaction
	warnings []IntegrityWarning
	warned   map[domain.TransactionType]bool
}

func (b *ledgerBuilder) add(t domain.TransactionType, playerID uuid.UUID, kpiID *uuid.UUID, description string) {
	reward := b.catalog.Reward(t)
	if reward.Fallback && !b.warned[t] {
		b.warned[t] = true
		b.warnings = append(b.warnings, IntegrityWarning{
			Kind:           kindOf(t),
			Type:           t,
			FallbackAmount: reward.Amount,
		})
	}
	if reward.Amount <= 0 {
		return
	}
	b.txs = append(b.txs, domain.MeritTransaction{
		ID:                            TransactionID(b.gameID, t, playerID, kpiID),
		PlayerID:                      playerID,
		Amount:                        reward.Amount,
		TransactionType:               t,
		SourceAchievementDefinitionID: reward.DefinitionID,
		SourceGameID:                  b.gameID,
		KpiID:                         kpiID,
		Description:                   description,
	})
}

// BuildTransactions converts achievements into merit ledger rows. Rows are
// emitted MVP, podium, KPI winners, winning team, then team leaders. Rewards
// that fell back to the default table are reported once per transaction type.
func (c *RewardCatalog) BuildTransactions(gameID uuid.UUID, ach *Achievements) ([]domain.MeritTransaction, []IntegrityWarning) {
	if ach == nil {
		return nil, nil
	}

	b := &ledgerBuilder{
		gameID:  gameID,
		catalog: c,
		warned:  make(map[domain.TransactionType]bool),
	}

	b.add(domain.TransactionTypeOverallMVP, ach.OverallMvpPlayerID, nil, "Overall Game MVP")

	for _, p := range ach.Podium {
		switch p.Rank {
		case 2:
			b.add(domain.TransactionTypePodiumSecond, p.PlayerID, nil,
				fmt.Sprintf("Podium finish: 2nd place (score %s)", p.Score))
		case 3:
			b.add(domain.TransactionTypePodiumThird, p.PlayerID, nil,
				fmt.Sprintf("Podium finish: 3rd place (score %s)", p.Score))
		}
	}

	for _, w := range ach.KpiWinners {
		kpiID := w.KpiID
		b.add(domain.TransactionTypeKpiBonus, w.PlayerID, &kpiID,
			fmt.Sprintf("Top performer in %s (%s)", w.KpiName, w.Value))
	}

	if ach.WinningTeamID != nil {
		for _, playerID := range ach.WinningTeamMembers {
			b.add(domain.TransactionTypeTeamWin, playerID, nil, "Winning team member")
		}
	}

	for _, l := range ach.TeamLeaders {
		b.add(domain.TransactionTypeTeamLeaderMVP, l.PlayerID, nil,
			fmt.Sprintf("Team leader MVP (score %s)", l.Score))
	}

	return b.txs, b.warnings
}
