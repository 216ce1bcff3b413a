// Package equipment provides equipment item definitions and the per-acquisition
// item instances that creatures wear.
package equipment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/menagerie/internal/game/element"
)

// Def is the immutable template of an equipment item loaded from YAML.
// Modifier percents are whole percents: 25 means +25%.
type Def struct {
	ID                    string       `yaml:"id"`
	Name                  string       `yaml:"name"`
	Description           string       `yaml:"description"`
	HealthModifierPercent float64      `yaml:"health_modifier_percent"`
	DamageModifierPercent float64      `yaml:"damage_modifier_percent"`
	Element               element.Kind `yaml:"element"`
	Icon                  string       `yaml:"icon"`
}

// Validate checks that the Def satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if d.Element == "" {
		d.Element = element.None
	}
	if !d.Element.Valid() {
		errs = append(errs, fmt.Errorf("element %q is not a known element", d.Element))
	}
	if d.HealthModifierPercent <= -100 {
		errs = append(errs, fmt.Errorf("health_modifier_percent must be > -100, got %v", d.HealthModifierPercent))
	}
	if d.DamageModifierPercent <= -100 {
		errs = append(errs, fmt.Errorf("damage_modifier_percent must be > -100, got %v", d.DamageModifierPercent))
	}
	if len(errs) > 0 {
		return fmt.Errorf("equipment %q validation failed: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// HealthFraction returns the health modifier as a fraction (25% → 0.25).
func (d *Def) HealthFraction() float64 {
	return d.HealthModifierPercent / 100
}

// DamageFraction returns the damage modifier as a fraction.
func (d *Def) DamageFraction() float64 {
	return d.DamageModifierPercent / 100
}

// Item is one acquired copy of a Def. Its InstanceID is generated when the
// item is acquired, never when the Def is defined.
type Item struct {
	InstanceID string
	Def        *Def
}

// Acquire creates a new Item instance of def with a fresh instance ID.
//
// Precondition: def must be non-nil and valid.
// Postcondition: Returns an Item whose InstanceID is unique.
func Acquire(def *Def) *Item {
	return &Item{
		InstanceID: uuid.New().String(),
		Def:        def,
	}
}

// Restore rebuilds an Item with a known instance ID, as read from storage.
//
// Precondition: instanceID must be non-empty; def must be non-nil.
func Restore(instanceID string, def *Def) *Item {
	return &Item{InstanceID: instanceID, Def: def}
}

// LoadDefs reads all *.yaml and *.yml files from dir, parses each as a Def,
// validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid Defs or the first encountered error.
func LoadDefs(dir string) ([]*Def, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadDefs: cannot read directory %q: %w", dir, err)
	}

	var defs []*Def
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadDefs: cannot read file %q: %w", path, err)
		}
		var d Def
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadDefs: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadDefs: invalid item in %q: %w", path, err)
		}
		defs = append(defs, &d)
	}
	return defs, nil
}
