package application

import (
	"math"
	"sort"

	"github.com/FIRSTIsrael/lems-core/internal/domain"
)

// championsPoolPadding extends the champions discussion pool past the
// award's winner count when advancement is disabled, so the committee
// can weigh a few more candidates than there are trophies.
const championsPoolPadding = 3

// DivisionState is the assembled read-path view of a division:
// aggregated scores, resolved ranks, and optional award nominations.
// It is recomputed whenever the underlying inputs or a committed
// picklist change.
type DivisionState struct {
	// Division is the input snapshot the state was derived from.
	Division *domain.Division

	// Scores holds the aggregated judging scores per team.
	Scores map[domain.TeamID]domain.TeamScores

	// Ranks holds the resolved category and total ranks per team.
	Ranks map[domain.TeamID]domain.TeamRanks

	// Nominations holds the optional award nomination flags per team.
	Nominations map[domain.TeamID]map[domain.AwardName]bool
}

// NewDivisionState derives the full read-path state from a division
// snapshot: score aggregation, rank resolution honoring committed
// category picklists, and nomination extraction.
func NewDivisionState(div *domain.Division) *DivisionState {
	scores := domain.AggregateScores(div.Teams, div.Rubrics, div.Scoresheets)
	return &DivisionState{
		Division:    div,
		Scores:      scores,
		Ranks:       domain.ResolveRanks(div.Teams, scores, div.CategoryPicklists),
		Nominations: domain.OptionalAwardNominations(div.Rubrics),
	}
}

// NormalizedScores returns the team's room-bias-corrected scores.
// Without a room score table or session the raw scores pass through.
func (s *DivisionState) NormalizedScores(id domain.TeamID) map[domain.JudgingCategory]float64 {
	var room domain.RoomID
	for _, session := range s.Division.Sessions {
		if session.TeamID == id {
			room = session.RoomID
			break
		}
	}
	return domain.NormalizeScores(s.Scores[id], s.Division.RoomScores, room)
}

// EligibleTeams computes which teams may be considered at the given
// final deliberation stage.
//
// Champions eligibility is rank-ordered and truncated to the
// advancement pool; all other stages return teams in roster order.
// Unregistered teams are never eligible, and disqualified teams are
// excluded from the champions pool.
func EligibleTeams(stage domain.DeliberationStage, state *DivisionState, d *domain.Deliberation, cfg *Config) []domain.TeamID {
	switch stage {
	case domain.StageChampions:
		return championsPool(state, d, cfg)
	case domain.StageCoreAwards:
		return coreAwardsEligible(state, d, cfg)
	case domain.StageOptionalAwards:
		return optionalAwardsEligible(state, d, cfg)
	case domain.StageReview:
		return registeredTeams(state)
	}
	return nil
}

// championsPool sorts the registered, non-disqualified teams by total
// rank ascending, breaking ties by core-values rank ascending and then
// team number descending, and truncates to the advancement pool size.
func championsPool(state *DivisionState, d *domain.Deliberation, cfg *Config) []domain.TeamID {
	teams := make([]domain.Team, 0, len(state.Division.Teams))
	for _, t := range state.Division.Teams {
		if t.Registered && !d.Disqualified[t.ID] {
			teams = append(teams, t)
		}
	}

	sort.SliceStable(teams, func(i, j int) bool {
		ri, rj := state.Ranks[teams[i].ID], state.Ranks[teams[j].ID]
		if ri.TotalRank != rj.TotalRank {
			return ri.TotalRank < rj.TotalRank
		}
		cvI, cvJ := ri.Rank(domain.CategoryCoreValues), rj.Rank(domain.CategoryCoreValues)
		if cvI != cvJ {
			return cvI < cvJ
		}
		return teams[i].Number > teams[j].Number
	})

	size := championsPoolSize(state, cfg)
	if size > len(teams) {
		size = len(teams)
	}

	out := make([]domain.TeamID, 0, size)
	for _, t := range teams[:size] {
		out = append(out, t.ID)
	}
	return out
}

func championsPoolSize(state *DivisionState, cfg *Config) int {
	if pct := advancementPercentage(state.Division, cfg); pct > 0 {
		return int(math.Round(float64(len(state.Division.Teams)) * pct / 100))
	}
	capacity := 0
	if a, ok := cfg.Award(domain.AwardChampions); ok {
		capacity = a.Winners
	}
	return capacity + championsPoolPadding
}

// advancementPercentage prefers the division snapshot's setting over
// the engine configuration's default.
func advancementPercentage(div *domain.Division, cfg *Config) float64 {
	if div != nil && div.AdvancementPercentage > 0 {
		return div.AdvancementPercentage
	}
	return cfg.AdvancementPercentage
}

// coreAwardsEligible returns the teams whose rank in at least one
// rubric category falls within that category's picklist capacity,
// plus any manual eligibility overrides for the stage.
func coreAwardsEligible(state *DivisionState, d *domain.Deliberation, cfg *Config) []domain.TeamID {
	teamCount := len(state.Division.Teams)
	manual := d.ManualOverrides(domain.StageCoreAwards)

	var out []domain.TeamID
	for _, t := range state.Division.Teams {
		if !t.Registered {
			continue
		}
		if manual[t.ID] || withinCategoryCapacity(state.Ranks[t.ID], teamCount, cfg) {
			out = append(out, t.ID)
		}
	}
	return out
}

func withinCategoryCapacity(ranks domain.TeamRanks, teamCount int, cfg *Config) bool {
	for _, c := range domain.RubricCategories {
		if ranks.Rank(c) <= cfg.CategoryPicklistCapacity(c, teamCount) {
			return true
		}
	}
	return false
}

// optionalAwardsEligible returns the teams nominated for at least one
// optional award that is actually configured for the division, plus
// manual overrides.
func optionalAwardsEligible(state *DivisionState, d *domain.Deliberation, cfg *Config) []domain.TeamID {
	manual := d.ManualOverrides(domain.StageOptionalAwards)

	configured := make(map[domain.AwardName]bool)
	for _, a := range cfg.Awards {
		if a.Optional && a.Name != string(domain.AwardExcellenceInEngineering) {
			configured[domain.AwardName(a.Name)] = true
		}
	}

	var out []domain.TeamID
	for _, t := range state.Division.Teams {
		if !t.Registered {
			continue
		}
		if manual[t.ID] || hasConfiguredNomination(state.Nominations[t.ID], configured) {
			out = append(out, t.ID)
		}
	}
	return out
}

func hasConfiguredNomination(flags map[domain.AwardName]bool, configured map[domain.AwardName]bool) bool {
	for award, nominated := range flags {
		if nominated && configured[award] {
			return true
		}
	}
	return false
}

func registeredTeams(state *DivisionState) []domain.TeamID {
	var out []domain.TeamID
	for _, t := range state.Division.Teams {
		if t.Registered {
			out = append(out, t.ID)
		}
	}
	return out
}
