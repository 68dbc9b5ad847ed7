package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FIRSTIsrael/lems-core/internal/domain"
)

func finalConfig() *Config {
	return &Config{
		Version:               "1",
		AdvancementPercentage: 50,
		Awards: []AwardConfig{
			{Name: "champions", Winners: 2},
			{Name: "core-values", Winners: 1},
			{Name: "innovation-project", Winners: 1},
			{Name: "robot-design", Winners: 1},
			{Name: "robot-performance", Winners: 2},
			{Name: string(domain.AwardExcellenceInEngineering), Winners: 1, Optional: true},
		},
	}
}

// fiveTeamState ranks t1..t5 with total ranks 3,1,2,4,5 and robot-game
// ranks matching the team index.
func fiveTeamState() *DivisionState {
	teams := []domain.Team{
		{ID: "t1", Number: 1, Registered: true},
		{ID: "t2", Number: 2, Registered: true},
		{ID: "t3", Number: 3, Registered: true},
		{ID: "t4", Number: 4, Registered: true},
		{ID: "t5", Number: 5, Registered: true},
	}
	totals := map[domain.TeamID]float64{"t1": 3, "t2": 1, "t3": 2, "t4": 4, "t5": 5}
	ranks := make(map[domain.TeamID]domain.TeamRanks, len(teams))
	for i, t := range teams {
		ranks[t.ID] = domain.TeamRanks{
			TeamID:    t.ID,
			Number:    t.Number,
			TotalRank: totals[t.ID],
			Ranks: map[domain.JudgingCategory]int{
				domain.CategoryCoreValues: int(totals[t.ID]),
				domain.CategoryRobotGame:  i + 1,
			},
		}
	}
	return &DivisionState{Division: &domain.Division{Teams: teams}, Ranks: ranks}
}

func newFinal(cfg *Config) *domain.Deliberation {
	return domain.NewFinalDeliberation("d1", cfg.PicklistCapacities())
}

func TestResolveChampionsRequiresFirstPlace(t *testing.T) {
	cfg := finalConfig()
	d := newFinal(cfg)

	_, err := ResolveStage(fiveTeamState(), d, cfg, nil)
	assert.ErrorIs(t, err, domain.ErrChampionsUnassigned)
}

func TestResolveChampionsStage(t *testing.T) {
	cfg := finalConfig()
	d := newFinal(cfg)
	require.True(t, d.Picklists.Insert(domain.AwardChampions, "t2", 0))

	res, err := ResolveStage(fiveTeamState(), d, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, []domain.TeamID{"t2"}, res.Winners[domain.AwardChampions])
	// Best two robot-game ranks take robot-performance automatically.
	assert.Equal(t, []domain.TeamID{"t1", "t2"}, res.Winners[domain.AwardRobotPerformance])
	// 50% of 5 teams rounds to 3 slots; the champion takes one and the
	// best remaining total ranks fill the rest.
	assert.Equal(t, []domain.TeamID{"t3", "t1"}, res.Advancing)
}

// A picklist limit can widen a final list past the award's winner
// count so the committee can weigh more candidates than places; only
// the leading entries win.
func TestResolveChampionsCapsWinnersAtAwardCount(t *testing.T) {
	cfg := finalConfig()
	cfg.AdvancementPercentage = 0
	cfg.PicklistLimits = map[string]int{"champions": 4}
	d := newFinal(cfg)
	for i, id := range []domain.TeamID{"t2", "t3", "t4", "t5"} {
		require.True(t, d.Picklists.Insert(domain.AwardChampions, id, i))
	}

	res, err := ResolveStage(fiveTeamState(), d, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.TeamID{"t2", "t3"}, res.Winners[domain.AwardChampions])
}

func TestResolveOptionalAwardsCapsWinners(t *testing.T) {
	cfg := finalConfig()
	cfg.Awards = append(cfg.Awards, AwardConfig{Name: "judges-award", Winners: 1, Optional: true})
	cfg.PicklistLimits = map[string]int{"judges-award": 3}
	d := newFinal(cfg)
	d.Stage = domain.StageOptionalAwards
	require.True(t, d.Picklists.Insert("judges-award", "t4", 0))
	require.True(t, d.Picklists.Insert("judges-award", "t1", 1))

	res, err := ResolveStage(fiveTeamState(), d, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.TeamID{"t4"}, res.Winners["judges-award"])
}

// Teams dropped from the roster after being placed must not be
// committed as winners.
func TestResolveStageDropsDanglingPicklistEntries(t *testing.T) {
	cfg := finalConfig()
	cfg.AdvancementPercentage = 0
	d := newFinal(cfg)
	require.True(t, d.Picklists.Insert(domain.AwardChampions, "t9", 0))
	require.True(t, d.Picklists.Insert(domain.AwardChampions, "t2", 1))

	res, err := ResolveStage(fiveTeamState(), d, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.TeamID{"t2"}, res.Winners[domain.AwardChampions])
}

func TestResolveCoreAwardsGhostOnlyPicklist(t *testing.T) {
	cfg := finalConfig()
	d := newFinal(cfg)
	d.Stage = domain.StageCoreAwards
	require.True(t, d.Picklists.Insert(domain.AwardChampions, "t1", 0))
	require.True(t, d.Picklists.Insert("core-values", "t9", 0))
	require.True(t, d.Picklists.Insert("innovation-project", "t4", 0))
	require.True(t, d.Picklists.Insert("robot-design", "t5", 0))

	// A category list holding only a dropped team counts as unassigned.
	_, err := ResolveStage(fiveTeamState(), d, cfg, nil)
	assert.ErrorIs(t, err, domain.ErrCategoryUnassigned)
}

func TestResolveChampionsAdvancementDisabled(t *testing.T) {
	cfg := finalConfig()
	cfg.AdvancementPercentage = 0
	d := newFinal(cfg)
	require.True(t, d.Picklists.Insert(domain.AwardChampions, "t2", 0))

	res, err := ResolveStage(fiveTeamState(), d, cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Advancing)
}

func TestResolveCoreAwardsEmptyPicklist(t *testing.T) {
	cfg := finalConfig()
	d := newFinal(cfg)
	d.Stage = domain.StageCoreAwards
	require.True(t, d.Picklists.Insert(domain.AwardChampions, "t1", 0))
	require.True(t, d.Picklists.Insert("core-values", "t2", 0))

	_, err := ResolveStage(fiveTeamState(), d, cfg, nil)
	assert.ErrorIs(t, err, domain.ErrCategoryUnassigned)
}

// A team crowned at the champions close can still be dragged into a
// category list afterwards; the committed winners must veto it.
func TestResolveCoreAwardsChampionConflict(t *testing.T) {
	cfg := finalConfig()
	d := newFinal(cfg)
	d.Stage = domain.StageCoreAwards
	require.True(t, d.Picklists.Insert("core-values", "t2", 0))
	require.True(t, d.Picklists.Insert("innovation-project", "t4", 0))
	require.True(t, d.Picklists.Insert("robot-design", "t5", 0))

	resolved := map[domain.AwardName][]domain.TeamID{
		domain.AwardChampions: {"t2"},
	}
	_, err := ResolveStage(fiveTeamState(), d, cfg, resolved)
	assert.ErrorIs(t, err, domain.ErrWinnerConflict)
}

func TestResolveCoreAwardsStage(t *testing.T) {
	cfg := finalConfig()
	d := newFinal(cfg)
	d.Stage = domain.StageCoreAwards
	require.True(t, d.Picklists.Insert(domain.AwardChampions, "t1", 0))
	require.True(t, d.Picklists.Insert("core-values", "t2", 0))
	require.True(t, d.Picklists.Insert("innovation-project", "t4", 0))
	require.True(t, d.Picklists.Insert("robot-design", "t5", 0))

	res, err := ResolveStage(fiveTeamState(), d, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, []domain.TeamID{"t2"}, res.Winners["core-values"])
	assert.Equal(t, []domain.TeamID{"t4"}, res.Winners["innovation-project"])
	assert.Equal(t, []domain.TeamID{"t5"}, res.Winners["robot-design"])

	// Excellence-in-engineering goes to the best total rank among teams
	// that won nothing: t2 is excluded despite the best rank, leaving t3.
	assert.Equal(t, []domain.TeamID{"t3"}, res.Winners[domain.AwardExcellenceInEngineering])
	assert.Empty(t, res.Advancing)
}

func TestResolveCoreAwardsWithoutExcellenceAward(t *testing.T) {
	cfg := finalConfig()
	cfg.Awards = cfg.Awards[:5] // drop excellence-in-engineering
	d := newFinal(cfg)
	d.Stage = domain.StageCoreAwards
	require.True(t, d.Picklists.Insert(domain.AwardChampions, "t1", 0))
	require.True(t, d.Picklists.Insert("core-values", "t2", 0))
	require.True(t, d.Picklists.Insert("innovation-project", "t4", 0))
	require.True(t, d.Picklists.Insert("robot-design", "t5", 0))

	res, err := ResolveStage(fiveTeamState(), d, cfg, nil)
	require.NoError(t, err)
	assert.NotContains(t, res.Winners, domain.AwardExcellenceInEngineering)
}

func TestResolveOptionalAwardsStage(t *testing.T) {
	cfg := finalConfig()
	cfg.Awards = append(cfg.Awards, AwardConfig{Name: "judges-award", Winners: 2, Optional: true})
	d := newFinal(cfg)
	d.Stage = domain.StageOptionalAwards
	require.True(t, d.Picklists.Insert("judges-award", "t4", 0))
	require.True(t, d.Picklists.Insert("judges-award", "t1", 1))

	res, err := ResolveStage(fiveTeamState(), d, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, []domain.TeamID{"t4", "t1"}, res.Winners["judges-award"])
	assert.NotContains(t, res.Winners, domain.AwardExcellenceInEngineering)
}

func TestResolveReviewStage(t *testing.T) {
	cfg := finalConfig()
	d := newFinal(cfg)
	d.Stage = domain.StageReview

	res, err := ResolveStage(fiveTeamState(), d, cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Winners)
	assert.Empty(t, res.Advancing)
}
