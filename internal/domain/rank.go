package domain

import "sort"

// TeamRanks holds the resolved competition ranks for a single team.
// Ranks are 1-based; tied teams share a rank and the next distinct
// score resumes at its 1-based sorted position ("1,2,2,4" style).
type TeamRanks struct {
	// TeamID is the team the ranks belong to.
	TeamID TeamID

	// Number is the team's competition number, carried for tie-breaks.
	Number int

	// Ranks maps every ranked category, robot-game included, to the
	// team's rank in it.
	Ranks map[JudgingCategory]int

	// TotalRank is the arithmetic mean of the four category ranks.
	TotalRank float64
}

// Rank returns the team's rank in the given category.
func (tr TeamRanks) Rank(c JudgingCategory) int { return tr.Ranks[c] }

// ResolveRanks converts aggregated scores and committed picklist order
// into final ranks for every team.
//
// Per rubric category, teams present in that category's committed
// picklist rank by their 1-based list position. The remaining teams
// rank competitively by raw category score descending within the
// unplaced subset, offset by the picklist length so their ranks
// continue after the placed positions. A category with no committed
// picklist falls back to pure score ranking.
//
// Robot-game has no picklist: all teams rank competitively by their
// summed robot-game scores, ordering ties by comparing individual
// round scores best-first.
//
// Picklist entries referencing teams outside the roster are dropped
// before ranking, so a stale picklist can never corrupt rank output.
func ResolveRanks(teams []Team, scores map[TeamID]TeamScores, picklists map[JudgingCategory][]TeamID) map[TeamID]TeamRanks {
	result := make(map[TeamID]*TeamRanks, len(teams))
	for _, t := range teams {
		result[t.ID] = &TeamRanks{
			TeamID: t.ID,
			Number: t.Number,
			Ranks:  make(map[JudgingCategory]int, len(RankedCategories)),
		}
	}

	roster := make(map[TeamID]bool, len(teams))
	for _, t := range teams {
		roster[t.ID] = true
	}

	for _, category := range RubricCategories {
		placed := sanitizePicklist(picklists[category], roster)
		placedSet := make(map[TeamID]bool, len(placed))
		for i, id := range placed {
			placedSet[id] = true
			result[id].Ranks[category] = i + 1
		}

		unplaced := make([]Team, 0, len(teams))
		for _, t := range teams {
			if !placedSet[t.ID] {
				unplaced = append(unplaced, t)
			}
		}
		sort.SliceStable(unplaced, func(i, j int) bool {
			return scores[unplaced[i].ID].Score(category) > scores[unplaced[j].ID].Score(category)
		})

		offset := len(placed)
		for i, t := range unplaced {
			rank := i + 1
			if i > 0 && scores[t.ID].Score(category) == scores[unplaced[i-1].ID].Score(category) {
				rank = result[unplaced[i-1].ID].Ranks[category] - offset
			}
			result[t.ID].Ranks[category] = rank + offset
		}
	}

	rankRobotGame(teams, scores, result)

	for _, tr := range result {
		var sum float64
		for _, c := range RankedCategories {
			sum += float64(tr.Ranks[c])
		}
		tr.TotalRank = sum / float64(len(RankedCategories))
	}

	out := make(map[TeamID]TeamRanks, len(result))
	for id, tr := range result {
		out[id] = *tr
	}
	return out
}

func rankRobotGame(teams []Team, scores map[TeamID]TeamScores, result map[TeamID]*TeamRanks) {
	ordered := make([]Team, len(teams))
	copy(ordered, teams)
	sort.SliceStable(ordered, func(i, j int) bool {
		return CompareScoreLists(
			scores[ordered[i].ID].RobotGameScores,
			scores[ordered[j].ID].RobotGameScores,
		) < 0
	})

	for i, t := range ordered {
		rank := i + 1
		if i > 0 && scores[t.ID].RobotGameTotal() == scores[ordered[i-1].ID].RobotGameTotal() {
			rank = result[ordered[i-1].ID].Ranks[CategoryRobotGame]
		}
		result[t.ID].Ranks[CategoryRobotGame] = rank
	}
}

// CompareScoreLists orders two robot-game score lists for ranking.
// It returns a negative value when a ranks ahead of b, positive when b
// ranks ahead, and zero when the lists are equivalent.
//
// The higher summed total wins; equal totals compare individual round
// scores best-first, so a team whose strongest games are stronger
// edges out an otherwise identical record.
func CompareScoreLists(a, b []int) int {
	sumA, sumB := sumInts(a), sumInts(b)
	if sumA != sumB {
		return sumB - sumA
	}

	sortedA, sortedB := sortedDesc(a), sortedDesc(b)
	for i := 0; i < len(sortedA) && i < len(sortedB); i++ {
		if sortedA[i] != sortedB[i] {
			return sortedB[i] - sortedA[i]
		}
	}
	return len(sortedB) - len(sortedA)
}

func sumInts(vals []int) int {
	var sum int
	for _, v := range vals {
		sum += v
	}
	return sum
}

func sortedDesc(vals []int) []int {
	out := make([]int, len(vals))
	copy(out, vals)
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func sanitizePicklist(list []TeamID, roster map[TeamID]bool) []TeamID {
	out := make([]TeamID, 0, len(list))
	seen := make(map[TeamID]bool, len(list))
	for _, id := range list {
		if !roster[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
