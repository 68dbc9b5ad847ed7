// Package domain contains pure, dependency-free domain models and the
// algorithmic core of the deliberation engine: score aggregation, room
// normalization, rank resolution, and picklist editing.
package domain

// TeamID uniquely identifies a team within a division.
type TeamID string

// RoomID identifies a judging room within a division.
type RoomID string

// JudgingCategory identifies one of the judged rubric categories.
// RobotGame is a pseudo-category used only for ranking; it is derived
// from match scores rather than a rubric.
type JudgingCategory string

const (
	// CategoryCoreValues is the Core Values rubric category.
	CategoryCoreValues JudgingCategory = "core-values"

	// CategoryInnovationProject is the Innovation Project rubric category.
	CategoryInnovationProject JudgingCategory = "innovation-project"

	// CategoryRobotDesign is the Robot Design rubric category.
	CategoryRobotDesign JudgingCategory = "robot-design"

	// CategoryRobotGame is the robot-game pseudo-category.
	// It participates in ranking but has no rubric and no picklist of
	// its own during category deliberations.
	CategoryRobotGame JudgingCategory = "robot-game"
)

// RubricCategories lists the three rubric-backed judging categories in
// canonical order.
var RubricCategories = []JudgingCategory{
	CategoryCoreValues,
	CategoryInnovationProject,
	CategoryRobotDesign,
}

// RankedCategories lists every category that contributes to the total
// rank, including the robot-game pseudo-category.
var RankedCategories = []JudgingCategory{
	CategoryCoreValues,
	CategoryInnovationProject,
	CategoryRobotDesign,
	CategoryRobotGame,
}

// IsRubricCategory reports whether c is one of the three rubric-backed
// categories.
func IsRubricCategory(c JudgingCategory) bool {
	switch c {
	case CategoryCoreValues, CategoryInnovationProject, CategoryRobotDesign:
		return true
	}
	return false
}

// AwardName identifies an award configured for a division.
// Category awards share their name with the judging category
// (e.g. "core-values").
type AwardName string

// Awards with dedicated resolution rules during final deliberations.
const (
	// AwardChampions is the overall champions award resolved at the
	// champions stage.
	AwardChampions AwardName = "champions"

	// AwardRobotPerformance is resolved automatically from robot-game
	// ranks when the champions stage closes.
	AwardRobotPerformance AwardName = "robot-performance"

	// AwardExcellenceInEngineering is the catch-all award granted to the
	// most deserving teams that won nothing else at the core-awards
	// stage.
	AwardExcellenceInEngineering AwardName = "excellence-in-engineering"
)

// Team is an externally owned competitor entity.
// The engine never mutates teams; it only reads them.
type Team struct {
	// ID uniquely identifies the team.
	ID TeamID

	// Number is the team's public competition number.
	Number int

	// Registered reports whether the team arrived and checked in.
	Registered bool
}

// RubricScore holds the judged field values of one rubric for one team.
type RubricScore struct {
	// TeamID is the team this rubric belongs to.
	TeamID TeamID

	// Category is the rubric's judging category.
	Category JudgingCategory

	// Fields maps rubric field ids to their judged value (1..4).
	Fields map[string]int

	// AwardNominations flags optional award nominations.
	// Only populated on core-values rubrics.
	AwardNominations map[AwardName]bool
}

// FieldSum returns the sum of all judged field values.
func (r RubricScore) FieldSum() int {
	var sum int
	for _, v := range r.Fields {
		sum += v
	}
	return sum
}

// MatchStage distinguishes practice rounds from ranking rounds.
type MatchStage string

const (
	// MatchStagePractice marks practice-round scoresheets, which never
	// feed the deliberation engine.
	MatchStagePractice MatchStage = "practice"

	// MatchStageRanking marks ranking-round scoresheets.
	MatchStageRanking MatchStage = "ranking"
)

// DefaultGPRating is assumed when a ranking scoresheet carries no
// Good Practices rating.
const DefaultGPRating = 3

// ScoresheetEntry is one robot-game scoresheet for one team and round.
type ScoresheetEntry struct {
	// TeamID is the team the scoresheet belongs to.
	TeamID TeamID

	// Round is the match round number, 1-based.
	Round int

	// Stage is the match stage; only ranking entries are aggregated.
	Stage MatchStage

	// RobotScore is the scored robot-game result for the round.
	RobotScore int

	// GPRating is the Good Practices rating (1..4). Zero means the
	// referee left it unset and DefaultGPRating applies.
	GPRating int
}

// GP returns the effective Good Practices rating for the entry.
func (s ScoresheetEntry) GP() int {
	if s.GPRating == 0 {
		return DefaultGPRating
	}
	return s.GPRating
}

// JudgingSession assigns a team to the judging room where all three of
// its rubrics were scored. The room determines which normalization
// factor applies to the team.
type JudgingSession struct {
	TeamID TeamID
	RoomID RoomID
}

// AwardDefinition is externally supplied award configuration.
type AwardDefinition struct {
	// Name is the award identifier; category awards use the category
	// name.
	Name AwardName

	// Capacity is the maximum number of winners, which also bounds the
	// award's picklist length.
	Capacity int

	// Optional marks core-values family awards that only nominated
	// teams may win.
	Optional bool
}

// AnomalyReason classifies a deliberation anomaly record.
type AnomalyReason string

const (
	// AnomalyLowRank flags a category rank far below the team's total rank.
	AnomalyLowRank AnomalyReason = "low-rank"

	// AnomalyHighRank flags a category rank far above the team's total rank.
	AnomalyHighRank AnomalyReason = "high-rank"
)

// DeliberationAnomaly is an upstream-produced flag that a team's
// category rank deviates abnormally from its total rank. The engine
// stores and exposes these records but never computes them.
type DeliberationAnomaly struct {
	TeamID   TeamID
	Category JudgingCategory
	Reason   AnomalyReason
}

// Division is the read-only input snapshot the engine operates on.
// The owning service fetches it from its store; the engine never
// performs I/O itself.
type Division struct {
	// Teams is the full roster, including unregistered teams.
	Teams []Team

	// Rubrics holds every rubric score record for the division.
	Rubrics []RubricScore

	// Scoresheets holds every scoresheet entry, practice included.
	Scoresheets []ScoresheetEntry

	// Sessions maps teams to judging rooms.
	Sessions []JudgingSession

	// Awards is the configured award list.
	Awards []AwardDefinition

	// RoomScores is the externally supplied per-room score table used
	// for normalization. Nil disables normalization.
	RoomScores RoomScoreTable

	// CategoryPicklists holds the committed picklist of every finished
	// category deliberation, keyed by category. Final ranks honor these
	// before falling back to score order.
	CategoryPicklists map[JudgingCategory][]TeamID

	// Anomalies are upstream-computed deliberation anomalies.
	Anomalies []DeliberationAnomaly

	// AdvancementPercentage is the share of teams (0..100) advancing to
	// the next competition phase. Zero disables advancement.
	AdvancementPercentage float64
}

// Award returns the definition of the named award and whether it is
// configured for the division.
func (d *Division) Award(name AwardName) (AwardDefinition, bool) {
	for _, a := range d.Awards {
		if a.Name == name {
			return a, true
		}
	}
	return AwardDefinition{}, false
}

// OptionalAwards returns the configured optional awards, excluding
// excellence-in-engineering, which has its own resolution rule.
func (d *Division) OptionalAwards() []AwardDefinition {
	var out []AwardDefinition
	for _, a := range d.Awards {
		if a.Optional && a.Name != AwardExcellenceInEngineering {
			out = append(out, a)
		}
	}
	return out
}

// Roster returns the set of known team ids, used to filter dangling
// picklist references.
func (d *Division) Roster() map[TeamID]bool {
	ids := make(map[TeamID]bool, len(d.Teams))
	for _, t := range d.Teams {
		ids[t.ID] = true
	}
	return ids
}
