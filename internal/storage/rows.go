// Package storage holds the row model shared by the roster stores. A saved
// roster is one header row, one row per creature keyed by uniqueID, and one
// row per owned item.
package storage

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/menagerie/internal/game/creature"
	"github.com/cory-johannsen/menagerie/internal/game/element"
	"github.com/cory-johannsen/menagerie/internal/game/roster"
)

// Slot names stored in roster_creatures.slot.
const (
	SlotBench = "bench"
	SlotParty = "party"
)

// Header is the rosters row.
type Header struct {
	ActiveIndex int
	Packs       int
}

// CreatureRow is one roster_creatures row.
type CreatureRow struct {
	UniqueID         string
	Slot             string
	Position         int
	TemplateRef      string
	Element          string
	PlayerOwned      bool
	Level            int
	CurrentXP        int
	XPToNextLevel    int
	CurrentHealth    float64
	MaxHealth        float64
	BaseMaxHealth    float64
	BaseSpeed        float64
	BaseAttackSpeed  float64
	BaseAttackDamage float64
	PendingXP        int
	PendingHeal      bool
	EvolutionState   int
}

// ItemRow is one roster_items row. EquippedBy is empty when unequipped.
type ItemRow struct {
	ItemID     string
	DefID      string
	EquippedBy string
}

// Flatten splits s into rows. Creatures are emitted bench first, then party,
// and items sorted by ID so writes are deterministic.
//
// Precondition: s must pass Validate.
func Flatten(s *roster.State) (Header, []CreatureRow, []ItemRow) {
	h := Header{ActiveIndex: s.ActiveIndex, Packs: s.Packs}
	creatures := make([]CreatureRow, 0, len(s.Bench)+len(s.Party))
	add := func(slot string, ids []string) {
		for pos, id := range ids {
			creatures = append(creatures, toRow(slot, pos, s.Creatures[id]))
		}
	}
	add(SlotBench, s.Bench)
	add(SlotParty, s.Party)

	items := make([]ItemRow, 0, len(s.Items))
	for id, def := range s.Items {
		items = append(items, ItemRow{ItemID: id, DefID: def, EquippedBy: s.Equipped[id]})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	return h, creatures, items
}

func toRow(slot string, pos int, rec *creature.Record) CreatureRow {
	return CreatureRow{
		UniqueID:         rec.UniqueID,
		Slot:             slot,
		Position:         pos,
		TemplateRef:      rec.TemplateRef,
		Element:          string(rec.Element),
		PlayerOwned:      rec.PlayerOwned,
		Level:            rec.Level,
		CurrentXP:        rec.CurrentXP,
		XPToNextLevel:    rec.XPToNextLevel,
		CurrentHealth:    rec.CurrentHealth,
		MaxHealth:        rec.MaxHealth,
		BaseMaxHealth:    rec.Base.MaxHealth,
		BaseSpeed:        rec.Base.Speed,
		BaseAttackSpeed:  rec.Base.AttackSpeed,
		BaseAttackDamage: rec.Base.AttackDamage,
		PendingXP:        rec.Pending.XP,
		PendingHeal:      rec.Pending.NeedsHeal,
		EvolutionState:   rec.EvolutionState,
	}
}

// Assemble rebuilds a State from rows. Each record's equipped item list is
// derived from the item rows.
//
// Postcondition: Returns a State that passes Validate, or an error naming the
// bad row.
func Assemble(h Header, creatures []CreatureRow, items []ItemRow) (*roster.State, error) {
	s := &roster.State{
		Creatures:   make(map[string]*creature.Record, len(creatures)),
		ActiveIndex: h.ActiveIndex,
		Items:       make(map[string]string, len(items)),
		Equipped:    make(map[string]string),
		Packs:       h.Packs,
	}
	sorted := append([]CreatureRow(nil), creatures...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	for _, row := range sorted {
		elem, err := element.Parse(row.Element)
		if err != nil {
			return nil, fmt.Errorf("creature %q: %w", row.UniqueID, err)
		}
		s.Creatures[row.UniqueID] = &creature.Record{
			UniqueID:    row.UniqueID,
			TemplateRef: row.TemplateRef,
			Base: creature.BaseStats{
				MaxHealth:    row.BaseMaxHealth,
				Speed:        row.BaseSpeed,
				AttackSpeed:  row.BaseAttackSpeed,
				AttackDamage: row.BaseAttackDamage,
			},
			Element:        elem,
			PlayerOwned:    row.PlayerOwned,
			Level:          row.Level,
			CurrentXP:      row.CurrentXP,
			XPToNextLevel:  row.XPToNextLevel,
			CurrentHealth:  row.CurrentHealth,
			MaxHealth:      row.MaxHealth,
			Pending:        creature.PendingReward{XP: row.PendingXP, NeedsHeal: row.PendingHeal},
			EvolutionState: row.EvolutionState,
		}
		switch row.Slot {
		case SlotBench:
			s.Bench = append(s.Bench, row.UniqueID)
		case SlotParty:
			s.Party = append(s.Party, row.UniqueID)
		default:
			return nil, fmt.Errorf("creature %q: unknown slot %q", row.UniqueID, row.Slot)
		}
	}
	for _, row := range items {
		s.Items[row.ItemID] = row.DefID
		if row.EquippedBy == "" {
			continue
		}
		s.Equipped[row.ItemID] = row.EquippedBy
		rec, ok := s.Creatures[row.EquippedBy]
		if !ok {
			return nil, fmt.Errorf("item %q equipped by unknown creature %q", row.ItemID, row.EquippedBy)
		}
		rec.EquippedItemIDs = append(rec.EquippedItemIDs, row.ItemID)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("assembling roster state: %w", err)
	}
	return s, nil
}
