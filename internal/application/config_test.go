package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FIRSTIsrael/lems-core/internal/domain"
)

const validConfigYAML = `
version: "1"
advancement_percentage: 25
awards:
  - name: champions
    winners: 2
  - name: core-values
    winners: 1
  - name: innovation-project
    winners: 1
  - name: robot-design
    winners: 1
  - name: robot-performance
    winners: 1
  - name: judges-award
    winners: 1
    optional: true
  - name: excellence-in-engineering
    winners: 1
    optional: true
picklist_limits:
  champions: 6
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig([]byte(validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "1", cfg.Version)
	assert.InDelta(t, 25.0, cfg.AdvancementPercentage, 1e-9)
	assert.Len(t, cfg.Awards, 7)
	assert.Equal(t, 6, cfg.PicklistLimits["champions"])

	award, ok := cfg.Award(domain.AwardChampions)
	require.True(t, ok)
	assert.Equal(t, 2, award.Winners)

	_, ok = cfg.Award("mystery")
	assert.False(t, ok)
}

// staticLoader is a ConfigLoader stub serving a fixed config.
type staticLoader struct {
	cfg Config
	err error
}

func (l *staticLoader) Load(_ context.Context, config any) error {
	if l.err != nil {
		return l.err
	}
	*config.(*Config) = l.cfg
	return nil
}

func (l *staticLoader) Watch(context.Context, any, func(any)) (func(), error) {
	return func() {}, nil
}

func TestLoadConfigFrom(t *testing.T) {
	cfg, err := LoadConfigFrom(context.Background(), &staticLoader{cfg: Config{
		Version: "1",
		Awards:  []AwardConfig{{Name: "champions", Winners: 2}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.Version)

	_, err = LoadConfigFrom(context.Background(), &staticLoader{err: errors.New("source down")})
	assert.ErrorContains(t, err, "failed to load config")

	// A loader serving structurally invalid config still fails
	// validation.
	_, err = LoadConfigFrom(context.Background(), &staticLoader{cfg: Config{Version: "1"}})
	assert.ErrorContains(t, err, "config validation failed")
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			yaml:    "awards: [",
			wantErr: "failed to parse config",
		},
		{
			name: "missing version",
			yaml: `
awards:
  - name: champions
    winners: 1
`,
			wantErr: "config validation failed",
		},
		{
			name: "no awards",
			yaml: `
version: "1"
awards: []
`,
			wantErr: "config validation failed",
		},
		{
			name: "invalid award name",
			yaml: `
version: "1"
awards:
  - name: "Champions!"
    winners: 1
`,
			wantErr: "config validation failed",
		},
		{
			name: "zero winners",
			yaml: `
version: "1"
awards:
  - name: champions
    winners: 0
`,
			wantErr: "config validation failed",
		},
		{
			name: "advancement percentage out of range",
			yaml: `
version: "1"
advancement_percentage: 150
awards:
  - name: champions
    winners: 1
`,
			wantErr: "config validation failed",
		},
		{
			name: "duplicate award",
			yaml: `
version: "1"
awards:
  - name: champions
    winners: 1
  - name: champions
    winners: 2
`,
			wantErr: `duplicate award "champions"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfigSuggestsClosestAward(t *testing.T) {
	_, err := LoadConfig([]byte(`
version: "1"
awards:
  - name: core-values
    winners: 1
picklist_limits:
  core-valuse: 4
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown award "core-valuse"`)
	assert.Contains(t, err.Error(), `did you mean "core-values"?`)
}

func TestCategoryPicklistCapacity(t *testing.T) {
	cfg := &Config{
		Awards:         []AwardConfig{{Name: "core-values", Winners: 1}},
		PicklistLimits: map[string]int{"robot-design": 5},
	}

	tests := []struct {
		name      string
		category  domain.JudgingCategory
		teamCount int
		want      int
	}{
		{name: "scales with team count", category: domain.CategoryCoreValues, teamCount: 20, want: 7},
		{name: "capped at maximum", category: domain.CategoryCoreValues, teamCount: 60, want: 12},
		{name: "floor of one", category: domain.CategoryCoreValues, teamCount: 2, want: 1},
		{name: "explicit override wins", category: domain.CategoryRobotDesign, teamCount: 60, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.CategoryPicklistCapacity(tt.category, tt.teamCount))
		})
	}
}

func TestPicklistCapacities(t *testing.T) {
	cfg, err := LoadConfig([]byte(validConfigYAML))
	require.NoError(t, err)

	caps := cfg.PicklistCapacities()
	assert.Equal(t, 6, caps[domain.AwardChampions], "explicit limit overrides winner count")
	assert.Equal(t, 1, caps["judges-award"])
}

func TestHasOptionalAwards(t *testing.T) {
	withJudges, err := LoadConfig([]byte(validConfigYAML))
	require.NoError(t, err)
	assert.True(t, withJudges.HasOptionalAwards())

	// Excellence-in-engineering alone does not make a stage; it is
	// resolved automatically at core-awards.
	onlyEiE := &Config{Awards: []AwardConfig{
		{Name: "champions", Winners: 1},
		{Name: string(domain.AwardExcellenceInEngineering), Winners: 1, Optional: true},
	}}
	assert.False(t, onlyEiE.HasOptionalAwards())
}

func TestAwardDefinitions(t *testing.T) {
	cfg := &Config{Awards: []AwardConfig{
		{Name: "champions", Winners: 2},
		{Name: "judges-award", Winners: 1, Optional: true},
	}}

	defs := cfg.AwardDefinitions()
	require.Len(t, defs, 2)
	assert.Equal(t, domain.AwardDefinition{Name: "champions", Capacity: 2}, defs[0])
	assert.True(t, defs[1].Optional)
}
