package merit

import (
	"fmt"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/google/uuid"
)

// AchievementKind identifies the catalog rows the ledger builder rewards.
type AchievementKind int

const (
	KindOverallMVP AchievementKind = iota
	KindPodiumFinisher
	KindKPIAchiever
	KindWinningTeamMember
	KindTeamLeaderMVP
)

// AllKinds lists every kind in reward emission order.
var AllKinds = []AchievementKind{
	KindOverallMVP,
	KindPodiumFinisher,
	KindKPIAchiever,
	KindWinningTeamMember,
	KindTeamLeaderMVP,
}

var kindNames = map[AchievementKind]string{
	KindOverallMVP:        "Overall Game MVP",
	KindPodiumFinisher:    "Podium Finisher (2nd/3rd Place)",
	KindKPIAchiever:       "KPI Achiever",
	KindWinningTeamMember: "Winning Team Member",
	KindTeamLeaderMVP:     "Team Leader MVP",
}

// CatalogName returns the achievement definition name the kind maps to.
func (k AchievementKind) CatalogName() string {
	return kindNames[k]
}

func (k AchievementKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("AchievementKind(%d)", int(k))
}

// ParseAchievementKind maps a catalog definition name to its kind.
func ParseAchievementKind(name string) (AchievementKind, bool) {
	for kind, n := range kindNames {
		if n == name {
			return kind, true
		}
	}
	return 0, false
}

// fallbackRewards is used when a catalog definition is missing. Podium
// places share one definition but fall back to different amounts.
var fallbackRewards = map[domain.TransactionType]int{
	domain.TransactionTypeOverallMVP:    500,
	domain.TransactionTypePodiumSecond:  200,
	domain.TransactionTypePodiumThird:   150,
	domain.TransactionTypeKpiBonus:      250,
	domain.TransactionTypeTeamWin:       100,
	domain.TransactionTypeTeamLeaderMVP: 300,
}

// FallbackReward returns the documented default amount for a transaction type.
func FallbackReward(t domain.TransactionType) int {
	return fallbackRewards[t]
}

func kindOf(t domain.TransactionType) AchievementKind {
	switch t {
	case domain.TransactionTypeOverallMVP:
		return KindOverallMVP
	case domain.TransactionTypePodiumSecond, domain.TransactionTypePodiumThird:
		return KindPodiumFinisher
	case domain.TransactionTypeKpiBonus:
		return KindKPIAchiever
	case domain.TransactionTypeTeamWin:
		return KindWinningTeamMember
	default:
		return KindTeamLeaderMVP
	}
}

// IntegrityWarning reports a reward that used the fallback table because its
// catalog definition is missing.
type IntegrityWarning struct {
	Kind           AchievementKind
	Type           domain.TransactionType
	FallbackAmount int
}

func (w IntegrityWarning) String() string {
	return fmt.Sprintf("achievement definition %q missing, %s uses fallback reward %d", w.Kind.CatalogName(), w.Type, w.FallbackAmount)
}

// Reward is the resolved merit amount for a transaction type.
type Reward struct {
	Amount       int
	DefinitionID *uuid.UUID
	Fallback     bool
}

// RewardCatalog maps achievement kinds to catalog definitions, resolved once
// at load time.
type RewardCatalog struct {
	definitions map[AchievementKind]domain.AchievementDefinition
}

// NewRewardCatalog resolves the loaded definitions. An empty catalog means it
// was never loaded and is reported as ErrConfigurationMissing. In strict mode
// any missing kind is fatal instead of falling back.
func NewRewardCatalog(defs []domain.AchievementDefinition, strict bool) (*RewardCatalog, error) {
	if len(defs) == 0 {
		return nil, domain.ErrConfigurationMissing
	}

	c := &RewardCatalog{definitions: make(map[AchievementKind]domain.AchievementDefinition)}
	for _, def := range defs {
		if def.IsStreak {
			continue
		}
		kind, ok := ParseAchievementKind(def.Name)
		if !ok {
			continue
		}
		if _, dup := c.definitions[kind]; dup {
			continue
		}
		c.definitions[kind] = def
	}

	if strict {
		for _, kind := range AllKinds {
			if _, ok := c.definitions[kind]; !ok {
				return nil, fmt.Errorf("%w: missing definition %q", domain.ErrConfigurationMissing, kind.CatalogName())
			}
		}
	}

	return c, nil
}

// Missing returns the kinds without a catalog definition.
func (c *RewardCatalog) Missing() []AchievementKind {
	var missing []AchievementKind
	for _, kind := range AllKinds {
		if _, ok := c.definitions[kind]; !ok {
			missing = append(missing, kind)
		}
	}
	return missing
}

// Reward resolves the amount for a transaction type.
func (c *RewardCatalog) Reward(t domain.TransactionType) Reward {
	def, ok := c.definitions[kindOf(t)]
	if !ok {
		return Reward{Amount: fallbackRewards[t], Fallback: true}
	}
	id := def.ID
	return Reward{Amount: def.MeritReward, DefinitionID: &id}
}
