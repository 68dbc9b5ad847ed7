package domain

import "sort"

// TeamScores holds the aggregated judging scores for a single team.
// Category scores are raw rubric sums; core-values additionally blends
// in the per-round Good Practices ratings from ranking scoresheets.
type TeamScores struct {
	// TeamID is the team the scores belong to.
	TeamID TeamID

	// Scores maps each rubric category to its aggregated score.
	Scores map[JudgingCategory]float64

	// TotalScore is the sum of the three rubric category scores,
	// post GP blending for core-values.
	TotalScore float64

	// GPRatings lists the effective Good Practices rating per ranking
	// round, in round order.
	GPRatings []int

	// RobotGameScores lists the robot-game score of every ranking
	// round, in round order.
	RobotGameScores []int

	// MaxRobotGameScore is the best single robot-game score; used for
	// display and the robot-performance award, not for ranking.
	MaxRobotGameScore int
}

// RobotGameTotal returns the summed robot-game score across all
// ranking rounds. Robot-game ranking orders teams by this total.
func (ts TeamScores) RobotGameTotal() int {
	var sum int
	for _, s := range ts.RobotGameScores {
		sum += s
	}
	return sum
}

// Score returns the team's score in the given rubric category, or zero
// when the rubric is missing.
func (ts TeamScores) Score(c JudgingCategory) float64 {
	return ts.Scores[c]
}

// AggregateScores computes per-team category scores from rubric and
// scoresheet records.
//
// For each rubric category the score is the sum of the rubric's field
// values. Core-values additionally adds the Good Practices rating of
// every ranking-round scoresheet (DefaultGPRating when unset), so the
// core-values score blends rubric content with cross-round conduct
// ratings. Practice-round scoresheets are ignored entirely.
//
// Teams without a rubric in some category score zero there; teams
// without ranking scoresheets have no robot-game scores. The result
// contains an entry for every team in the roster.
func AggregateScores(teams []Team, rubrics []RubricScore, scoresheets []ScoresheetEntry) map[TeamID]TeamScores {
	byTeam := make(map[TeamID]TeamScores, len(teams))

	rubricsByTeam := make(map[TeamID][]RubricScore, len(teams))
	for _, r := range rubrics {
		if !IsRubricCategory(r.Category) {
			continue
		}
		rubricsByTeam[r.TeamID] = append(rubricsByTeam[r.TeamID], r)
	}

	sheetsByTeam := make(map[TeamID][]ScoresheetEntry, len(teams))
	for _, s := range scoresheets {
		if s.Stage != MatchStageRanking {
			continue
		}
		sheetsByTeam[s.TeamID] = append(sheetsByTeam[s.TeamID], s)
	}

	for _, team := range teams {
		ts := TeamScores{
			TeamID: team.ID,
			Scores: make(map[JudgingCategory]float64, len(RubricCategories)),
		}
		for _, c := range RubricCategories {
			ts.Scores[c] = 0
		}

		sheets := sortedByRound(sheetsByTeam[team.ID])
		for _, sheet := range sheets {
			ts.GPRatings = append(ts.GPRatings, sheet.GP())
			ts.RobotGameScores = append(ts.RobotGameScores, sheet.RobotScore)
			if sheet.RobotScore > ts.MaxRobotGameScore {
				ts.MaxRobotGameScore = sheet.RobotScore
			}
		}

		for _, rubric := range rubricsByTeam[team.ID] {
			ts.Scores[rubric.Category] += float64(rubric.FieldSum())
		}
		for _, gp := range ts.GPRatings {
			ts.Scores[CategoryCoreValues] += float64(gp)
		}

		for _, c := range RubricCategories {
			ts.TotalScore += ts.Scores[c]
		}

		byTeam[team.ID] = ts
	}

	return byTeam
}

// OptionalAwardNominations extracts the per-team optional award
// nomination flags from core-values rubrics.
func OptionalAwardNominations(rubrics []RubricScore) map[TeamID]map[AwardName]bool {
	out := make(map[TeamID]map[AwardName]bool)
	for _, r := range rubrics {
		if r.Category != CategoryCoreValues || len(r.AwardNominations) == 0 {
			continue
		}
		flags := make(map[AwardName]bool, len(r.AwardNominations))
		for award, nominated := range r.AwardNominations {
			flags[award] = nominated
		}
		out[r.TeamID] = flags
	}
	return out
}

func sortedByRound(sheets []ScoresheetEntry) []ScoresheetEntry {
	out := make([]ScoresheetEntry, len(sheets))
	copy(out, sheets)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	return out
}
