// Package gamification awards points and badges as habits are completed.
package gamification

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

//go:embed badges.yaml
var defaultCatalog []byte

// Catalog is the set of badges that can be earned
type Catalog struct {
	PointsPerCompletion int                      `yaml:"points_per_completion"`
	Badges              []models.BadgeDefinition `yaml:"badges"`

	byID map[string]models.BadgeDefinition
}

// DefaultCatalog parses the catalog compiled into the binary
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog reads a YAML badge catalog
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse badge catalog: %w", err)
	}
	if c.PointsPerCompletion <= 0 {
		c.PointsPerCompletion = constants.PointsPerCompletion
	}

	c.byID = make(map[string]models.BadgeDefinition, len(c.Badges))
	for _, b := range c.Badges {
		if b.ID == "" {
			return nil, fmt.Errorf("badge %q has no id", b.Name)
		}
		if _, dup := c.byID[b.ID]; dup {
			return nil, fmt.Errorf("duplicate badge id %q", b.ID)
		}
		switch b.Rule {
		case models.RuleCompletedLogs, models.RuleStreak, models.RuleHabitsCreated, models.RulePoints:
		default:
			return nil, fmt.Errorf("badge %q has unknown rule %q", b.ID, b.Rule)
		}
		if b.Threshold <= 0 {
			return nil, fmt.Errorf("badge %q needs a positive threshold", b.ID)
		}
		if b.Frequency != "" && !b.Frequency.Valid() {
			return nil, fmt.Errorf("badge %q has unknown frequency %q", b.ID, b.Frequency)
		}
		if b.PerHabit && b.Rule != models.RuleStreak {
			return nil, fmt.Errorf("badge %q: only streak badges can be per habit", b.ID)
		}
		c.byID[b.ID] = b
	}
	return &c, nil
}

// Lookup returns the definition with the given id
func (c *Catalog) Lookup(id string) (models.BadgeDefinition, bool) {
	b, ok := c.byID[id]
	return b, ok
}
