// Package catalog holds the fixed option lists offered by the lesson wizard
package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// PhaseInfo describes a pedagogical phase and the stages it groups
type PhaseInfo struct {
	Name        models.Phase   `yaml:"name" json:"name"`
	Title       string         `yaml:"title" json:"title"`
	Description string         `yaml:"description" json:"description"`
	Stages      []models.Stage `yaml:"stages" json:"stages"`
}

// Catalog is the set of options the wizard accepts
type Catalog struct {
	Durations             []string                  `yaml:"durations" json:"durations"`
	ClassSizes            []string                  `yaml:"class_sizes" json:"classSizes"`
	InteractivityLevels   []string                  `yaml:"interactivity_levels" json:"interactivityLevels"`
	Phases                []PhaseInfo               `yaml:"phases" json:"phases"`
	Strategies            map[models.Stage][]string `yaml:"strategies" json:"strategies"`
	DefaultTimeAllocation models.TimeAllocation     `yaml:"default_time_allocation" json:"defaultTimeAllocation"`
	BackgroundImages      []string                  `yaml:"background_images" json:"-"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog embedded in the binary.
// The embedded file is validated by tests, so a parse failure here is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalogYAML)
		if err != nil {
			panic(fmt.Sprintf("invalid embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse decodes a catalog from YAML and checks that every stage has strategies
func Parse(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	for _, stage := range models.Stages {
		if len(c.Strategies[stage]) == 0 {
			return nil, fmt.Errorf("catalog has no strategies for stage %s", stage)
		}
	}
	if len(c.Phases) != 3 {
		return nil, fmt.Errorf("catalog must define 3 phases, got %d", len(c.Phases))
	}

	return c, nil
}

// HasDuration reports whether d is an offered lesson duration
func (c *Catalog) HasDuration(d string) bool {
	return slices.Contains(c.Durations, d)
}

// HasClassSize reports whether s is an offered class size band
func (c *Catalog) HasClassSize(s string) bool {
	return slices.Contains(c.ClassSizes, s)
}

// HasInteractivity reports whether l is an offered interactivity level
func (c *Catalog) HasInteractivity(l string) bool {
	return slices.Contains(c.InteractivityLevels, l)
}

// HasStrategy reports whether label belongs to the given stage
func (c *Catalog) HasStrategy(stage models.Stage, label string) bool {
	return slices.Contains(c.Strategies[stage], label)
}

// Phase returns the description of the named phase
func (c *Catalog) Phase(name models.Phase) (PhaseInfo, bool) {
	for _, p := range c.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return PhaseInfo{}, false
}
