// Package reward defines drop tables rolled when a wild creature is defeated
// and the collectible pickups those drops produce.
package reward

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/menagerie/internal/game/dice"
)

// PickupKind identifies what a collectible does when picked up.
type PickupKind string

const (
	// KindXPOrb grants XP to the active creature.
	KindXPOrb PickupKind = "xp_orb"
	// KindSuperXPOrb grants XP to every party member.
	KindSuperXPOrb PickupKind = "super_xp_orb"
	// KindHeal fully heals the party.
	KindHeal PickupKind = "heal"
	// KindLootBag grants gacha packs.
	KindLootBag PickupKind = "loot_bag"
)

var validKinds = map[PickupKind]bool{
	KindXPOrb:      true,
	KindSuperXPOrb: true,
	KindHeal:       true,
	KindLootBag:    true,
}

// DefaultAmount returns the amount a pickup of kind carries when a drop entry
// leaves it unspecified.
func DefaultAmount(kind PickupKind) int {
	switch kind {
	case KindXPOrb:
		return 10
	case KindSuperXPOrb:
		return 100
	case KindLootBag:
		return 5
	default:
		return 1
	}
}

// DropEntry defines one possible pickup in a drop table.
type DropEntry struct {
	Kind   PickupKind `yaml:"kind"`
	Chance float64    `yaml:"chance"`
	Min    int        `yaml:"min"`
	Max    int        `yaml:"max"`
}

// DropTable defines the possible pickups a defeated wild creature leaves behind.
type DropTable struct {
	Entries []DropEntry `yaml:"entries"`
}

// Validate checks that the drop table satisfies its invariants.
//
// Precondition: dt must not be nil.
// Postcondition: Returns nil iff every entry has a known kind, a chance in
// (0, 1.0], and 0 <= min <= max. An empty table is valid.
func (dt *DropTable) Validate() error {
	for i, e := range dt.Entries {
		if !validKinds[e.Kind] {
			return fmt.Errorf("drop table: entry[%d] has unknown kind %q", i, e.Kind)
		}
		if e.Chance <= 0 || e.Chance > 1.0 {
			return fmt.Errorf("drop table: entry[%d] chance must be in (0, 1.0], got %f", i, e.Chance)
		}
		if e.Min < 0 {
			return fmt.Errorf("drop table: entry[%d] min must be >= 0, got %d", i, e.Min)
		}
		if e.Min > e.Max {
			return fmt.Errorf("drop table: entry[%d] min (%d) must be <= max (%d)", i, e.Min, e.Max)
		}
	}
	return nil
}

// Pickup is one collectible lying in the world.
type Pickup struct {
	ID     string
	Kind   PickupKind
	Amount int
}

// GenerateDrops rolls every entry of dt against src.
//
// Precondition: dt must have passed Validate().
// Postcondition: each returned pickup's Amount is in [Min, Max], or
// DefaultAmount(kind) when the entry's Max is zero.
func GenerateDrops(dt DropTable, src dice.Source) []Pickup {
	var out []Pickup
	for _, e := range dt.Entries {
		if !dice.Chance(src, e.Chance) {
			continue
		}
		amount := DefaultAmount(e.Kind)
		if e.Max > 0 {
			amount = dice.Between(src, e.Min, e.Max)
		}
		out = append(out, Pickup{
			ID:     uuid.New().String(),
			Kind:   e.Kind,
			Amount: amount,
		})
	}
	return out
}
