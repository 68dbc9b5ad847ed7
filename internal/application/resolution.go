package application

import (
	"math"
	"sort"

	"github.com/FIRSTIsrael/lems-core/internal/domain"
)

// Resolution is the outcome of closing one final deliberation stage:
// the winners it commits and, for the champions stage, the teams
// advancing to the next competition phase.
type Resolution struct {
	// Winners maps each award resolved at the stage to its ordered
	// winner list. First place is index zero.
	Winners map[domain.AwardName][]domain.TeamID

	// Advancing lists the teams advancing past the division, populated
	// only at the champions stage and only when advancement is enabled.
	Advancing []domain.TeamID
}

// ResolveStage validates and resolves the deliberation's current stage.
//
// Champions: the champions picklist becomes the champions winners,
// robot-performance is resolved automatically from robot-game ranks,
// and the advancement list is selected. Core-awards: each rubric
// category picklist becomes that category award's winners, and
// excellence-in-engineering is granted to the best-ranked teams that
// won nothing at either stage. Optional-awards: each configured
// optional award's picklist becomes its winners. Review resolves
// nothing. Every resolved list is filtered against the division roster
// and capped at the award's configured winner count.
//
// The resolved map carries the winners committed at earlier stage
// closes; core-awards validates its picklists against the committed
// champions, so moving a crowned team into a category list afterwards
// still fails the close.
//
// Validation failures return domain sentinel errors and resolve no
// winners; callers must leave the deliberation's lifecycle untouched.
func ResolveStage(state *DivisionState, d *domain.Deliberation, cfg *Config, resolved map[domain.AwardName][]domain.TeamID) (*Resolution, error) {
	switch d.Stage {
	case domain.StageChampions:
		return resolveChampions(state, d, cfg)
	case domain.StageCoreAwards:
		return resolveCoreAwards(state, d, cfg, resolved)
	case domain.StageOptionalAwards:
		return resolveOptionalAwards(state, d, cfg)
	case domain.StageReview:
		return &Resolution{Winners: map[domain.AwardName][]domain.TeamID{}}, nil
	}
	return nil, domain.ErrNotInProgress
}

// committedList reads an award's picklist for commitment. Entries no
// longer on the division roster are dropped, and the list is truncated
// to the award's winner count, since a picklist limit override can
// widen the list past the places available.
func committedList(state *DivisionState, d *domain.Deliberation, cfg *Config, name domain.AwardName) []domain.TeamID {
	roster := state.Division.Roster()
	var list []domain.TeamID
	for _, id := range d.Picklists.List(name) {
		if roster[id] {
			list = append(list, id)
		}
	}
	if a, ok := cfg.Award(name); ok && len(list) > a.Winners {
		list = list[:a.Winners]
	}
	return list
}

func resolveChampions(state *DivisionState, d *domain.Deliberation, cfg *Config) (*Resolution, error) {
	champions := committedList(state, d, cfg, domain.AwardChampions)
	if len(champions) == 0 {
		return nil, domain.ErrChampionsUnassigned
	}

	winners := map[domain.AwardName][]domain.TeamID{
		domain.AwardChampions: champions,
	}
	if rp := robotPerformanceWinners(state, cfg); len(rp) > 0 {
		winners[domain.AwardRobotPerformance] = rp
	}

	return &Resolution{
		Winners:   winners,
		Advancing: selectAdvancing(state, champions, cfg),
	}, nil
}

// robotPerformanceWinners takes the best robot-game ranks, as many as
// the award has places. An unconfigured award resolves to none.
func robotPerformanceWinners(state *DivisionState, cfg *Config) []domain.TeamID {
	award, ok := cfg.Award(domain.AwardRobotPerformance)
	if !ok {
		return nil
	}

	teams := registeredSorted(state, func(a, b domain.TeamRanks) bool {
		return a.Rank(domain.CategoryRobotGame) < b.Rank(domain.CategoryRobotGame)
	})
	if len(teams) > award.Winners {
		teams = teams[:award.Winners]
	}
	return teams
}

// selectAdvancing picks the advancing teams: champions winners advance
// implicitly, and the remaining slots go to the best total ranks.
// The slot count is round(teamCount × percentage / 100) minus the
// champions already taken.
func selectAdvancing(state *DivisionState, champions []domain.TeamID, cfg *Config) []domain.TeamID {
	pct := advancementPercentage(state.Division, cfg)
	if pct <= 0 {
		return nil
	}

	taken := make(map[domain.TeamID]bool, len(champions))
	for _, id := range champions {
		taken[id] = true
	}

	sorted := registeredSorted(state, func(a, b domain.TeamRanks) bool {
		if a.TotalRank != b.TotalRank {
			return a.TotalRank < b.TotalRank
		}
		return a.Rank(domain.CategoryCoreValues) < b.Rank(domain.CategoryCoreValues)
	})

	count := int(math.Round(float64(len(state.Division.Teams))*pct/100)) - len(champions)
	if count <= 0 {
		return nil
	}

	var out []domain.TeamID
	for _, id := range sorted {
		if taken[id] {
			continue
		}
		out = append(out, id)
		if len(out) == count {
			break
		}
	}
	return out
}

func resolveCoreAwards(state *DivisionState, d *domain.Deliberation, cfg *Config, resolved map[domain.AwardName][]domain.TeamID) (*Resolution, error) {
	committed := resolved[domain.AwardChampions]
	if len(committed) == 0 {
		committed = committedList(state, d, cfg, domain.AwardChampions)
	}
	champions := make(map[domain.TeamID]bool, len(committed))
	for _, id := range committed {
		champions[id] = true
	}

	winners := make(map[domain.AwardName][]domain.TeamID, len(domain.RubricCategories)+1)
	for _, category := range domain.RubricCategories {
		list := committedList(state, d, cfg, domain.AwardName(category))
		if len(list) == 0 {
			return nil, domain.ErrCategoryUnassigned
		}
		for _, id := range list {
			if champions[id] {
				return nil, domain.ErrWinnerConflict
			}
		}
		winners[domain.AwardName(category)] = list
	}

	if eie := excellenceInEngineeringWinners(state, winners, champions, cfg); len(eie) > 0 {
		winners[domain.AwardExcellenceInEngineering] = eie
	}

	return &Resolution{Winners: winners}, nil
}

// excellenceInEngineeringWinners grants the award to the best-ranked
// teams that hold neither a champions place nor a category award.
// Robot-performance and optional awards do not disqualify a team.
func excellenceInEngineeringWinners(state *DivisionState, categoryWinners map[domain.AwardName][]domain.TeamID, champions map[domain.TeamID]bool, cfg *Config) []domain.TeamID {
	award, ok := cfg.Award(domain.AwardExcellenceInEngineering)
	if !ok {
		return nil
	}

	won := make(map[domain.TeamID]bool, len(champions))
	for id := range champions {
		won[id] = true
	}
	for _, category := range domain.RubricCategories {
		for _, id := range categoryWinners[domain.AwardName(category)] {
			won[id] = true
		}
	}

	sorted := registeredSorted(state, func(a, b domain.TeamRanks) bool {
		return a.TotalRank < b.TotalRank
	})

	var out []domain.TeamID
	for _, id := range sorted {
		if won[id] {
			continue
		}
		out = append(out, id)
		if len(out) == award.Winners {
			break
		}
	}
	return out
}

func resolveOptionalAwards(state *DivisionState, d *domain.Deliberation, cfg *Config) (*Resolution, error) {
	winners := make(map[domain.AwardName][]domain.TeamID)
	for _, a := range cfg.Awards {
		if !a.Optional || a.Name == string(domain.AwardExcellenceInEngineering) {
			continue
		}
		name := domain.AwardName(a.Name)
		if list := committedList(state, d, cfg, name); len(list) > 0 {
			winners[name] = list
		}
	}
	return &Resolution{Winners: winners}, nil
}

// registeredSorted returns the registered team ids ordered by the rank
// comparator, breaking remaining ties by team number for determinism.
func registeredSorted(state *DivisionState, less func(a, b domain.TeamRanks) bool) []domain.TeamID {
	teams := make([]domain.Team, 0, len(state.Division.Teams))
	for _, t := range state.Division.Teams {
		if t.Registered {
			teams = append(teams, t)
		}
	}

	sort.SliceStable(teams, func(i, j int) bool {
		ri, rj := state.Ranks[teams[i].ID], state.Ranks[teams[j].ID]
		if less(ri, rj) {
			return true
		}
		if less(rj, ri) {
			return false
		}
		return teams[i].Number < teams[j].Number
	})

	out := make([]domain.TeamID, len(teams))
	for i, t := range teams {
		out[i] = t.ID
	}
	return out
}
