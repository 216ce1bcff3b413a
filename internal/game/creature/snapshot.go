package creature

import (
	"fmt"

	"github.com/cory-johannsen/menagerie/internal/game/equipment"
)

// SnapshotInto copies every persistent field of e into rec and clears the
// pending reward, which the Entity has already absorbed.
//
// Precondition: rec.UniqueID must equal e.ID().
// Postcondition: rec reflects e exactly; rec.Pending is zero.
func (e *Entity) SnapshotInto(rec *Record) error {
	if rec.UniqueID != e.id {
		return fmt.Errorf("snapshot: entity %q does not own record %q", e.id, rec.UniqueID)
	}
	rec.TemplateRef = e.tmpl.ID
	rec.Base = e.base
	rec.Element = e.elem
	rec.PlayerOwned = e.playerOwned
	rec.Level = e.level
	rec.CurrentXP = e.xp
	rec.XPToNextLevel = e.rules.xpToNext(e.level)
	rec.CurrentHealth = e.health
	rec.MaxHealth = e.stats.MaxHealth
	if e.item != nil {
		rec.EquippedItemIDs = []string{e.item.InstanceID}
	} else {
		rec.EquippedItemIDs = nil
	}
	rec.Pending = PendingReward{}
	rec.EvolutionState = e.evolution
	return nil
}

// Restore builds a live Entity from rec. The record's base stats are
// authoritative; tmpl supplies display data and evolution rules.
//
// Precondition: tmpl.ID == rec.TemplateRef; item is the instance named by
// rec.EquippedItemIDs, or nil when none is equipped.
// Postcondition: Returns an Entity whose derived stats are recomputed and
// whose health is clamped into [0, MaxHealth]. rec is not modified; pending
// rewards are left for the caller to apply.
func Restore(rec *Record, tmpl *Template, item *equipment.Item, rules *Rules) (*Entity, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if tmpl == nil || tmpl.ID != rec.TemplateRef {
		return nil, fmt.Errorf("restore %q: template %q not supplied", rec.UniqueID, rec.TemplateRef)
	}
	want := rec.EquippedItemID()
	switch {
	case want == "" && item != nil:
		return nil, fmt.Errorf("restore %q: item %q supplied but none equipped", rec.UniqueID, item.InstanceID)
	case want != "" && (item == nil || item.InstanceID != want):
		return nil, fmt.Errorf("restore %q: equipped item %q not supplied", rec.UniqueID, want)
	}

	e := &Entity{
		id:          rec.UniqueID,
		tmpl:        tmpl,
		base:        rec.Base,
		elem:        rec.Element,
		playerOwned: rec.PlayerOwned,
		level:       rec.Level,
		xp:          rec.CurrentXP,
		evolution:   rec.EvolutionState,
		item:        item,
		rules:       rules,
	}
	e.recompute()
	e.health = clamp(rec.CurrentHealth, 0, e.stats.MaxHealth)
	e.dead = e.health == 0
	return e, nil
}
