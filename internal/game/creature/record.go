package creature

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/menagerie/internal/game/element"
	"github.com/cory-johannsen/menagerie/internal/game/equipment"
	"github.com/cory-johannsen/menagerie/internal/game/growth"
)

// healthEpsilon absorbs float rounding when comparing stored health to max.
const healthEpsilon = 1e-9

// PendingReward is XP and healing credited to a creature while it has no
// live Entity. It is applied and cleared on the next activation.
type PendingReward struct {
	XP        int  `yaml:"xp"`
	NeedsHeal bool `yaml:"needs_heal"`
}

// IsZero reports whether nothing is pending.
func (p PendingReward) IsZero() bool {
	return p.XP == 0 && !p.NeedsHeal
}

// Record is the inert, serializable state of one creature.
type Record struct {
	// UniqueID is assigned once at acquisition and never changes.
	UniqueID    string       `yaml:"unique_id"`
	TemplateRef string       `yaml:"template_ref"`
	Base        BaseStats    `yaml:"base"`
	Element     element.Kind `yaml:"element"`
	PlayerOwned bool         `yaml:"player_owned"`
	Level       int          `yaml:"level"`
	CurrentXP   int          `yaml:"current_xp"`
	// XPToNextLevel is 0 at the level cap.
	XPToNextLevel int     `yaml:"xp_to_next_level"`
	CurrentHealth float64 `yaml:"current_health"`
	// MaxHealth is the last derived maximum health.
	MaxHealth       float64       `yaml:"max_health"`
	EquippedItemIDs []string      `yaml:"equipped_item_ids,omitempty"`
	Pending         PendingReward `yaml:"pending"`
	EvolutionState  int           `yaml:"evolution_state"`
}

// Validate checks the Record invariants.
//
// Postcondition: Returns nil iff identity fields are set, level is in range,
// 0 <= CurrentHealth <= MaxHealth, at most one item is equipped, and pending
// XP is non-negative.
func (r *Record) Validate() error {
	var errs []error
	if r.UniqueID == "" {
		errs = append(errs, errors.New("unique_id must not be empty"))
	}
	if r.TemplateRef == "" {
		errs = append(errs, errors.New("template_ref must not be empty"))
	}
	if !r.Element.Valid() {
		errs = append(errs, fmt.Errorf("unknown element %q", r.Element))
	}
	if r.Level < growth.MinLevel || r.Level > growth.MaxLevel {
		errs = append(errs, fmt.Errorf("level %d outside [%d, %d]", r.Level, growth.MinLevel, growth.MaxLevel))
	}
	if r.CurrentXP < 0 {
		errs = append(errs, fmt.Errorf("current_xp must be >= 0, got %d", r.CurrentXP))
	}
	if r.CurrentHealth < 0 || r.CurrentHealth > r.MaxHealth+healthEpsilon {
		errs = append(errs, fmt.Errorf("current_health %v outside [0, %v]", r.CurrentHealth, r.MaxHealth))
	}
	if len(r.EquippedItemIDs) > 1 {
		errs = append(errs, fmt.Errorf("at most one equipped item, got %d", len(r.EquippedItemIDs)))
	}
	if r.Pending.XP < 0 {
		errs = append(errs, fmt.Errorf("pending xp must be >= 0, got %d", r.Pending.XP))
	}
	if len(errs) > 0 {
		return fmt.Errorf("creature record %q: %w", r.UniqueID, errors.Join(errs...))
	}
	return nil
}

// Fainted reports whether the stored health is zero.
func (r *Record) Fainted() bool {
	return r.CurrentHealth <= 0
}

// EquippedItemID returns the equipped item instance ID, or "".
func (r *Record) EquippedItemID() string {
	if len(r.EquippedItemIDs) == 0 {
		return ""
	}
	return r.EquippedItemIDs[0]
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := *r
	if r.EquippedItemIDs != nil {
		c.EquippedItemIDs = append([]string(nil), r.EquippedItemIDs...)
	}
	return &c
}

func (r *Rules) xpToNext(level int) int {
	if level >= growth.MaxLevel {
		return 0
	}
	return r.Growth.XPToNext(level)
}

// NewRecord creates a freshly acquired creature of tmpl at level.
//
// Precondition: tmpl must be non-nil and valid.
// Postcondition: Returns a Record with a new uuid, full health and no item.
func (r *Rules) NewRecord(tmpl *Template, level int, playerOwned bool) *Record {
	level = growth.Clamp(level)
	stats := r.Derive(tmpl.Base, tmpl.Element, level, playerOwned, nil)
	return &Record{
		UniqueID:      uuid.New().String(),
		TemplateRef:   tmpl.ID,
		Base:          tmpl.Base,
		Element:       tmpl.Element,
		PlayerOwned:   playerOwned,
		Level:         level,
		XPToNextLevel: r.xpToNext(level),
		CurrentHealth: stats.MaxHealth,
		MaxHealth:     stats.MaxHealth,
	}
}

// Derived returns the stats rec would have with item equipped.
func (r *Rules) Derived(rec *Record, item *equipment.Item) Stats {
	return r.Derive(rec.Base, rec.Element, rec.Level, rec.PlayerOwned, item)
}

// EquipRecord equips item on a creature that has no live Entity, applying
// the same health rule as Entity.Equip.
//
// Precondition: rec has no equipped item; item is non-nil.
func (r *Rules) EquipRecord(rec *Record, item *equipment.Item) {
	oldMax := r.Derived(rec, nil).MaxHealth
	newMax := r.Derived(rec, item).MaxHealth
	rec.CurrentHealth = raiseHealth(rec.CurrentHealth, oldMax, newMax)
	rec.MaxHealth = newMax
	rec.EquippedItemIDs = []string{item.InstanceID}
}

// DequipRecord removes item from a creature that has no live Entity,
// applying the same health rule as Entity.Dequip.
//
// Precondition: item is the one rec has equipped.
func (r *Rules) DequipRecord(rec *Record, item *equipment.Item) {
	oldMax := r.Derived(rec, item).MaxHealth
	newMax := r.Derived(rec, nil).MaxHealth
	rec.CurrentHealth = lowerHealth(rec.CurrentHealth, oldMax, newMax)
	rec.MaxHealth = newMax
	rec.EquippedItemIDs = nil
}
