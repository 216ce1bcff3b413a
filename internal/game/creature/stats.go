package creature

import (
	"github.com/cory-johannsen/menagerie/internal/game/element"
	"github.com/cory-johannsen/menagerie/internal/game/equipment"
	"github.com/cory-johannsen/menagerie/internal/game/growth"
)

// attackSpeedDampening halves the growth bonus applied to attack speed.
const attackSpeedDampening = 0.5

// Stats are the derived, level- and equipment-scaled stats of a creature.
type Stats struct {
	MaxHealth    float64
	Speed        float64
	AttackSpeed  float64
	AttackDamage float64
}

// Rules bundles the shared tables every Entity consults.
type Rules struct {
	Affinity *element.Table
	Growth   *growth.Curve
	// PartyModifier scales player-owned maxHealth.
	PartyModifier float64
}

// DefaultRules returns the default effectiveness table and growth curve with
// a party modifier of 1.0.
func DefaultRules() *Rules {
	return &Rules{
		Affinity:      element.DefaultTable(),
		Growth:        growth.Default(),
		PartyModifier: 1.0,
	}
}

// Derive computes derived stats.
//
// Postcondition: The result depends only on the arguments; equal inputs give
// bit-identical outputs.
func (r *Rules) Derive(base BaseStats, elem element.Kind, level int, playerOwned bool, item *equipment.Item) Stats {
	g := r.Growth.Multiplier(level)

	owner := 1.0
	if playerOwned {
		owner = r.PartyModifier
	}
	healthBonus := 0.0
	damageBonus := 0.0
	if item != nil {
		healthBonus = item.Def.HealthFraction()
		if item.Def.Element == elem {
			damageBonus = item.Def.DamageFraction()
		}
	}

	return Stats{
		MaxHealth:    base.MaxHealth * g * owner * (1 + healthBonus),
		AttackDamage: base.AttackDamage * g * (1 + damageBonus),
		AttackSpeed:  base.AttackSpeed * (1 + (g-1)*attackSpeedDampening),
		Speed:        base.Speed,
	}
}

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// raiseHealth applies a level-up, evolution or equip change: any increase in
// maxHealth is added to health, which is then clamped to the new maximum.
// A fainted creature stays at 0.
func raiseHealth(health, oldMax, newMax float64) float64 {
	if health <= 0 {
		return 0
	}
	if newMax > oldMax {
		health += newMax - oldMax
	}
	return clamp(health, 0, newMax)
}

// lowerHealth applies a dequip: any decrease in maxHealth is subtracted from
// health, floored at 1 so that removing an item never faints a creature.
func lowerHealth(health, oldMax, newMax float64) float64 {
	if health <= 0 {
		return 0
	}
	if oldMax > newMax {
		health -= oldMax - newMax
		if health < 1 {
			health = 1
		}
	}
	return clamp(health, 0, newMax)
}
