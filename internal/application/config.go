// Package application orchestrates deliberations: it loads and
// validates division configuration, computes stage eligibility,
// resolves award winners at stage transitions, and serializes all
// mutations against the authoritative aggregate state.
package application

import (
	"context"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/FIRSTIsrael/lems-core/internal/domain"
	"github.com/FIRSTIsrael/lems-core/internal/ports"
)

// Picklist sizing defaults for category deliberations.
const (
	// MaxPicklistLength caps the default category picklist size
	// regardless of division size.
	MaxPicklistLength = 12

	// PicklistLimitMultiplier scales the default category picklist
	// size with the team count.
	PicklistLimitMultiplier = 0.35
)

// Config is the engine configuration for one division, typically
// loaded from YAML. It names the configured awards with their winner
// counts, the advancement percentage, and any per-award picklist
// limit overrides.
type Config struct {
	// Version is the configuration schema version.
	Version string `yaml:"version" validate:"required"`

	// AdvancementPercentage is the share of teams (0..100) advancing
	// to the next competition phase. Zero disables advancement.
	AdvancementPercentage float64 `yaml:"advancement_percentage" validate:"min=0,max=100"`

	// Awards lists every award configured for the division.
	Awards []AwardConfig `yaml:"awards" validate:"required,min=1,dive"`

	// PicklistLimits overrides the picklist capacity of specific
	// awards. Keys must name configured awards.
	PicklistLimits map[string]int `yaml:"picklist_limits" validate:"omitempty,dive,min=1"`
}

// AwardConfig defines a single configured award.
type AwardConfig struct {
	// Name is the award identifier; category awards use the category
	// name (e.g. "core-values").
	Name string `yaml:"name" validate:"required,awardname"`

	// Winners is the maximum number of winners, which also bounds the
	// award's picklist.
	Winners int `yaml:"winners" validate:"required,min=1"`

	// Optional marks core-values family awards restricted to nominated
	// teams.
	Optional bool `yaml:"optional"`
}

// LoadConfig parses and validates YAML configuration.
// Unknown award names in picklist_limits fail validation with a
// closest-match suggestion.
func LoadConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigFrom loads and validates configuration through a
// ConfigLoader port, letting the owning service source it from files
// or remote configuration.
func LoadConfigFrom(ctx context.Context, loader ports.ConfigLoader) (*Config, error) {
	var cfg Config
	if err := loader.Load(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural constraints and cross-field consistency.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	seen := make(map[string]bool, len(c.Awards))
	known := make([]string, 0, len(c.Awards))
	for _, a := range c.Awards {
		if seen[a.Name] {
			return fmt.Errorf("config validation failed: duplicate award %q", a.Name)
		}
		seen[a.Name] = true
		known = append(known, a.Name)
	}

	for name := range c.PicklistLimits {
		if seen[name] {
			continue
		}
		if suggestion, ok := suggestName(name, known); ok {
			return fmt.Errorf("config validation failed: picklist limit for unknown award %q (did you mean %q?)", name, suggestion)
		}
		return fmt.Errorf("config validation failed: picklist limit for unknown award %q", name)
	}
	return nil
}

// AwardDefinitions converts the configured awards to domain form.
func (c *Config) AwardDefinitions() []domain.AwardDefinition {
	out := make([]domain.AwardDefinition, 0, len(c.Awards))
	for _, a := range c.Awards {
		out = append(out, domain.AwardDefinition{
			Name:     domain.AwardName(a.Name),
			Capacity: a.Winners,
			Optional: a.Optional,
		})
	}
	return out
}

// Award returns the configuration of the named award.
func (c *Config) Award(name domain.AwardName) (AwardConfig, bool) {
	for _, a := range c.Awards {
		if a.Name == string(name) {
			return a, true
		}
	}
	return AwardConfig{}, false
}

// PicklistCapacities returns the per-award picklist capacity map for a
// final deliberation: the award's winner count unless an explicit
// limit overrides it.
func (c *Config) PicklistCapacities() map[domain.AwardName]int {
	caps := make(map[domain.AwardName]int, len(c.Awards))
	for _, a := range c.Awards {
		caps[domain.AwardName(a.Name)] = a.Winners
	}
	for name, limit := range c.PicklistLimits {
		caps[domain.AwardName(name)] = limit
	}
	return caps
}

// CategoryPicklistCapacity returns the picklist capacity for a
// category deliberation: an explicit override when configured,
// otherwise min(MaxPicklistLength, ceil(PicklistLimitMultiplier × teamCount)).
func (c *Config) CategoryPicklistCapacity(category domain.JudgingCategory, teamCount int) int {
	if limit, ok := c.PicklistLimits[string(category)]; ok {
		return limit
	}
	scaled := int(math.Ceil(PicklistLimitMultiplier * float64(teamCount)))
	if scaled > MaxPicklistLength {
		return MaxPicklistLength
	}
	if scaled < 1 {
		return 1
	}
	return scaled
}

// HasOptionalAwards reports whether any optional award other than
// excellence-in-engineering is configured; when none is, the
// optional-awards stage is skipped entirely.
func (c *Config) HasOptionalAwards() bool {
	for _, a := range c.Awards {
		if a.Optional && a.Name != string(domain.AwardExcellenceInEngineering) {
			return true
		}
	}
	return false
}
