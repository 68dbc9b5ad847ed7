package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FIRSTIsrael/lems-core/internal/domain"
)

// stateWithRanks builds a DivisionState around handcrafted ranks.
func stateWithRanks(teams []domain.Team, ranks map[domain.TeamID]domain.TeamRanks) *DivisionState {
	return &DivisionState{
		Division: &domain.Division{Teams: teams},
		Ranks:    ranks,
	}
}

func teamRanks(total float64, cv int) domain.TeamRanks {
	return domain.TeamRanks{
		TotalRank: total,
		Ranks:     map[domain.JudgingCategory]int{domain.CategoryCoreValues: cv},
	}
}

func TestChampionsPoolOrderingAndTruncation(t *testing.T) {
	teams := []domain.Team{
		{ID: "t1", Number: 1, Registered: true},
		{ID: "t2", Number: 2, Registered: true},
		{ID: "t3", Number: 3, Registered: true},
		{ID: "t4", Number: 4, Registered: true},
	}
	ranks := map[domain.TeamID]domain.TeamRanks{
		"t1": teamRanks(1.0, 1),
		"t2": teamRanks(2.0, 2),
		"t3": teamRanks(2.0, 1), // total tie with t2, better core-values
		"t4": teamRanks(4.0, 4),
	}
	state := stateWithRanks(teams, ranks)
	d := domain.NewFinalDeliberation("d1", nil)
	cfg := &Config{
		AdvancementPercentage: 50,
		Awards:                []AwardConfig{{Name: "champions", Winners: 1}},
	}

	pool := EligibleTeams(domain.StageChampions, state, d, cfg)
	// 50% of 4 teams = pool of 2, ordered total rank then core-values.
	assert.Equal(t, []domain.TeamID{"t1", "t3"}, pool)
}

func TestChampionsPoolTeamNumberTieBreakDescending(t *testing.T) {
	teams := []domain.Team{
		{ID: "t5", Number: 5, Registered: true},
		{ID: "t6", Number: 6, Registered: true},
	}
	ranks := map[domain.TeamID]domain.TeamRanks{
		"t5": teamRanks(1.0, 1),
		"t6": teamRanks(1.0, 1),
	}
	state := stateWithRanks(teams, ranks)
	d := domain.NewFinalDeliberation("d1", nil)
	cfg := &Config{AdvancementPercentage: 100}

	pool := EligibleTeams(domain.StageChampions, state, d, cfg)
	assert.Equal(t, []domain.TeamID{"t6", "t5"}, pool,
		"full tie must order by team number descending")
}

func TestChampionsPoolExcludesDisqualifiedAndUnregistered(t *testing.T) {
	teams := []domain.Team{
		{ID: "t1", Number: 1, Registered: true},
		{ID: "t2", Number: 2, Registered: false},
		{ID: "t3", Number: 3, Registered: true},
	}
	ranks := map[domain.TeamID]domain.TeamRanks{
		"t1": teamRanks(1.0, 1),
		"t2": teamRanks(2.0, 2),
		"t3": teamRanks(3.0, 3),
	}
	state := stateWithRanks(teams, ranks)
	d := domain.NewFinalDeliberation("d1", nil)
	d.Disqualified["t1"] = true
	cfg := &Config{AdvancementPercentage: 100}

	pool := EligibleTeams(domain.StageChampions, state, d, cfg)
	assert.Equal(t, []domain.TeamID{"t3"}, pool)
}

func TestChampionsPoolWithoutAdvancement(t *testing.T) {
	teams := make([]domain.Team, 8)
	ranks := make(map[domain.TeamID]domain.TeamRanks, 8)
	for i := range teams {
		id := domain.TeamID(rune('a' + i))
		teams[i] = domain.Team{ID: id, Number: i + 1, Registered: true}
		ranks[id] = teamRanks(float64(i+1), i+1)
	}
	state := stateWithRanks(teams, ranks)
	d := domain.NewFinalDeliberation("d1", nil)
	cfg := &Config{Awards: []AwardConfig{{Name: "champions", Winners: 2}}}

	pool := EligibleTeams(domain.StageChampions, state, d, cfg)
	// Advancement disabled: pool is winner count plus the padding.
	assert.Len(t, pool, 5)
	assert.Equal(t, domain.TeamID("a"), pool[0])
}

func TestChampionsPoolDivisionAdvancementOverride(t *testing.T) {
	teams := []domain.Team{
		{ID: "t1", Number: 1, Registered: true},
		{ID: "t2", Number: 2, Registered: true},
		{ID: "t3", Number: 3, Registered: true},
		{ID: "t4", Number: 4, Registered: true},
	}
	ranks := map[domain.TeamID]domain.TeamRanks{
		"t1": teamRanks(1.0, 1),
		"t2": teamRanks(2.0, 2),
		"t3": teamRanks(3.0, 3),
		"t4": teamRanks(4.0, 4),
	}
	state := stateWithRanks(teams, ranks)
	state.Division.AdvancementPercentage = 50
	d := domain.NewFinalDeliberation("d1", nil)
	cfg := &Config{AdvancementPercentage: 100}

	pool := EligibleTeams(domain.StageChampions, state, d, cfg)
	assert.Equal(t, []domain.TeamID{"t1", "t2"}, pool,
		"division snapshot percentage takes precedence over configuration")
}

func TestCoreAwardsEligibility(t *testing.T) {
	teams := []domain.Team{
		{ID: "t1", Number: 1, Registered: true},
		{ID: "t2", Number: 2, Registered: true},
		{ID: "t3", Number: 3, Registered: true},
		{ID: "t4", Number: 4, Registered: true},
	}
	// Capacity is min(12, ceil(0.35*4)) = 2 per category.
	ranks := map[domain.TeamID]domain.TeamRanks{
		"t1": {Ranks: map[domain.JudgingCategory]int{
			domain.CategoryCoreValues: 1, domain.CategoryInnovationProject: 3, domain.CategoryRobotDesign: 3,
		}},
		"t2": {Ranks: map[domain.JudgingCategory]int{
			domain.CategoryCoreValues: 3, domain.CategoryInnovationProject: 2, domain.CategoryRobotDesign: 4,
		}},
		"t3": {Ranks: map[domain.JudgingCategory]int{
			domain.CategoryCoreValues: 4, domain.CategoryInnovationProject: 4, domain.CategoryRobotDesign: 5,
		}},
		"t4": {Ranks: map[domain.JudgingCategory]int{
			domain.CategoryCoreValues: 5, domain.CategoryInnovationProject: 5, domain.CategoryRobotDesign: 6,
		}},
	}
	state := stateWithRanks(teams, ranks)
	d := domain.NewFinalDeliberation("d1", nil)
	d.ManualEligibility[domain.StageCoreAwards] = []domain.TeamID{"t4"}
	cfg := &Config{Awards: []AwardConfig{{Name: "champions", Winners: 1}}}

	eligible := EligibleTeams(domain.StageCoreAwards, state, d, cfg)
	assert.Equal(t, []domain.TeamID{"t1", "t2", "t4"}, eligible,
		"top-2 rank in any category or a manual override qualifies")
}

func TestOptionalAwardsEligibility(t *testing.T) {
	teams := []domain.Team{
		{ID: "t1", Number: 1, Registered: true},
		{ID: "t2", Number: 2, Registered: true},
		{ID: "t3", Number: 3, Registered: true},
		{ID: "t4", Number: 4, Registered: true},
	}
	state := &DivisionState{
		Division: &domain.Division{Teams: teams},
		Nominations: map[domain.TeamID]map[domain.AwardName]bool{
			"t1": {"judges-award": true},
			"t2": {domain.AwardExcellenceInEngineering: true},
			"t3": {"unconfigured-award": true},
		},
	}
	d := domain.NewFinalDeliberation("d1", nil)
	d.ManualEligibility[domain.StageOptionalAwards] = []domain.TeamID{"t4"}
	cfg := &Config{Awards: []AwardConfig{
		{Name: "judges-award", Winners: 1, Optional: true},
		{Name: string(domain.AwardExcellenceInEngineering), Winners: 1, Optional: true},
	}}

	eligible := EligibleTeams(domain.StageOptionalAwards, state, d, cfg)
	assert.Equal(t, []domain.TeamID{"t1", "t4"}, eligible,
		"only configured optional awards count, excellence-in-engineering excluded")
}

func TestReviewEligibility(t *testing.T) {
	teams := []domain.Team{
		{ID: "t1", Number: 1, Registered: true},
		{ID: "t2", Number: 2, Registered: false},
	}
	state := stateWithRanks(teams, nil)
	d := domain.NewFinalDeliberation("d1", nil)

	eligible := EligibleTeams(domain.StageReview, state, d, &Config{})
	assert.Equal(t, []domain.TeamID{"t1"}, eligible)
}

func TestEligibleTeamsUnknownStage(t *testing.T) {
	state := stateWithRanks(nil, nil)
	d := domain.NewFinalDeliberation("d1", nil)
	require.Nil(t, EligibleTeams("mystery", state, d, &Config{}))
}
