// Package testutils provides fixtures and fakes shared by the engine's
// test suites: division builders, in-memory ports, and a recording
// result sink with failure injection.
package testutils

import (
	"fmt"

	"github.com/FIRSTIsrael/lems-core/internal/domain"
)

// Team builds a registered team with a deterministic id derived from
// its number.
func Team(number int) domain.Team {
	return domain.Team{
		ID:         domain.TeamID(fmt.Sprintf("team-%d", number)),
		Number:     number,
		Registered: true,
	}
}

// Teams builds registered teams numbered 1..n.
func Teams(n int) []domain.Team {
	out := make([]domain.Team, n)
	for i := range out {
		out[i] = Team(i + 1)
	}
	return out
}

// Rubric builds a rubric score whose fields sum to total.
func Rubric(teamID domain.TeamID, category domain.JudgingCategory, total int) domain.RubricScore {
	return domain.RubricScore{
		TeamID:   teamID,
		Category: category,
		Fields:   map[string]int{"f1": total},
	}
}

// NominatingRubric builds a core-values rubric with award nominations.
func NominatingRubric(teamID domain.TeamID, total int, nominations ...domain.AwardName) domain.RubricScore {
	r := Rubric(teamID, domain.CategoryCoreValues, total)
	r.AwardNominations = make(map[domain.AwardName]bool, len(nominations))
	for _, name := range nominations {
		r.AwardNominations[name] = true
	}
	return r
}

// Scoresheet builds a ranking-round scoresheet entry.
func Scoresheet(teamID domain.TeamID, round, robotScore, gp int) domain.ScoresheetEntry {
	return domain.ScoresheetEntry{
		TeamID:     teamID,
		Round:      round,
		Stage:      domain.MatchStageRanking,
		RobotScore: robotScore,
		GPRating:   gp,
	}
}

// Session assigns a team to a judging room.
func Session(teamID domain.TeamID, roomID domain.RoomID) domain.JudgingSession {
	return domain.JudgingSession{TeamID: teamID, RoomID: roomID}
}

// DivisionBuilder assembles a division snapshot piecewise. The zero
// value is unusable; start from NewDivision.
type DivisionBuilder struct {
	div *domain.Division
}

// NewDivision starts a builder seeded with the given roster.
func NewDivision(teams []domain.Team) *DivisionBuilder {
	return &DivisionBuilder{div: &domain.Division{Teams: teams}}
}

// WithRubrics appends rubric score records.
func (b *DivisionBuilder) WithRubrics(rubrics ...domain.RubricScore) *DivisionBuilder {
	b.div.Rubrics = append(b.div.Rubrics, rubrics...)
	return b
}

// WithScoresheets appends scoresheet entries.
func (b *DivisionBuilder) WithScoresheets(entries ...domain.ScoresheetEntry) *DivisionBuilder {
	b.div.Scoresheets = append(b.div.Scoresheets, entries...)
	return b
}

// WithSessions appends judging room assignments.
func (b *DivisionBuilder) WithSessions(sessions ...domain.JudgingSession) *DivisionBuilder {
	b.div.Sessions = append(b.div.Sessions, sessions...)
	return b
}

// WithRoomScores sets the normalization table.
func (b *DivisionBuilder) WithRoomScores(table domain.RoomScoreTable) *DivisionBuilder {
	b.div.RoomScores = table
	return b
}

// WithCategoryPicklist commits a category picklist.
func (b *DivisionBuilder) WithCategoryPicklist(category domain.JudgingCategory, teams ...domain.TeamID) *DivisionBuilder {
	if b.div.CategoryPicklists == nil {
		b.div.CategoryPicklists = make(map[domain.JudgingCategory][]domain.TeamID)
	}
	b.div.CategoryPicklists[category] = teams
	return b
}

// WithAdvancement sets the advancement percentage.
func (b *DivisionBuilder) WithAdvancement(pct float64) *DivisionBuilder {
	b.div.AdvancementPercentage = pct
	return b
}

// Build returns the assembled snapshot.
func (b *DivisionBuilder) Build() *domain.Division { return b.div }

// UniformDivision builds a fully populated division where team i
// scores baseScore+i in every rubric category and robot game round.
// Useful when a test needs a strict, predictable ranking order.
func UniformDivision(teamCount, baseScore int) *domain.Division {
	teams := Teams(teamCount)
	b := NewDivision(teams)
	for i, t := range teams {
		score := baseScore + i
		b.WithRubrics(
			Rubric(t.ID, domain.CategoryCoreValues, score),
			Rubric(t.ID, domain.CategoryInnovationProject, score),
			Rubric(t.ID, domain.CategoryRobotDesign, score),
		)
		b.WithScoresheets(
			Scoresheet(t.ID, 1, score*10, 3),
			Scoresheet(t.ID, 2, score*10+5, 3),
			Scoresheet(t.ID, 3, score*10-5, 3),
		)
	}
	return b.Build()
}
