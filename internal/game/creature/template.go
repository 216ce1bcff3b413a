// Package creature provides creature templates, the persisted Record form,
// and the live Entity simulation built from a Record.
package creature

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/menagerie/internal/game/dice"
	"github.com/cory-johannsen/menagerie/internal/game/element"
	"github.com/cory-johannsen/menagerie/internal/game/growth"
	"github.com/cory-johannsen/menagerie/internal/game/reward"
)

// BaseStats are the unscaled stats of a species at level 1.
type BaseStats struct {
	MaxHealth    float64 `yaml:"max_health"`
	Speed        float64 `yaml:"speed"`
	AttackSpeed  float64 `yaml:"attack_speed"`
	AttackDamage float64 `yaml:"attack_damage"`
}

// Evolution names the species a creature may evolve into and the level required.
type Evolution struct {
	Into  string `yaml:"into"`
	Level int    `yaml:"level"`
}

// Template defines a creature species loaded from YAML.
type Template struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Element     element.Kind `yaml:"element"`
	Icon        string       `yaml:"icon"`
	Base        BaseStats    `yaml:"base"`
	// CaptureChallenge is the percentile a capture roll must exceed, in [0, 100].
	CaptureChallenge int               `yaml:"capture_challenge"`
	Evolution        *Evolution        `yaml:"evolution"`
	Drops            *reward.DropTable `yaml:"drops"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, the element is
// known, every base stat is > 0 (speed >= 0), CaptureChallenge is in [0, 100],
// and any evolution and drop table are well formed.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("creature template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("creature template %q: name must not be empty", t.ID)
	}
	if t.Element == "" {
		t.Element = element.None
	}
	if !t.Element.Valid() {
		return fmt.Errorf("creature template %q: unknown element %q", t.ID, t.Element)
	}
	if t.Base.MaxHealth <= 0 {
		return fmt.Errorf("creature template %q: base.max_health must be > 0", t.ID)
	}
	if t.Base.AttackDamage <= 0 {
		return fmt.Errorf("creature template %q: base.attack_damage must be > 0", t.ID)
	}
	if t.Base.AttackSpeed <= 0 {
		return fmt.Errorf("creature template %q: base.attack_speed must be > 0", t.ID)
	}
	if t.Base.Speed < 0 {
		return fmt.Errorf("creature template %q: base.speed must be >= 0", t.ID)
	}
	if t.CaptureChallenge < 0 || t.CaptureChallenge > 100 {
		return fmt.Errorf("creature template %q: capture_challenge must be in [0, 100], got %d", t.ID, t.CaptureChallenge)
	}
	if t.Evolution != nil {
		if t.Evolution.Into == "" || t.Evolution.Into == t.ID {
			return fmt.Errorf("creature template %q: evolution.into must name another template", t.ID)
		}
		if t.Evolution.Level < growth.MinLevel || t.Evolution.Level > growth.MaxLevel {
			return fmt.Errorf("creature template %q: evolution.level must be in [%d, %d]", t.ID, growth.MinLevel, growth.MaxLevel)
		}
	}
	if t.Drops != nil {
		if err := t.Drops.Validate(); err != nil {
			return fmt.Errorf("creature template %q: %w", t.ID, err)
		}
	}
	return nil
}

// CaptureSucceeds rolls a percentile against CaptureChallenge. A challenge of
// 100 can never be captured.
func (t *Template) CaptureSucceeds(src dice.Source) bool {
	return dice.Percentile(src) > t.CaptureChallenge
}

// LoadTemplateFromBytes parses a single creature template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading creature dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
