package roster

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/menagerie/internal/game/equipment"
)

// equippedOn returns the item instance ID worn by party[i].
func (r *Roster) equippedOn(i int) string {
	if i == r.activeIndex && r.active != nil {
		if it := r.active.Item(); it != nil {
			return it.InstanceID
		}
		return ""
	}
	return r.party[i].EquippedItemID()
}

// EquipItem equips an owned item on the party member id. An active member
// equips through its Entity; an inactive one has its record updated with
// the same health rule.
//
// Postcondition: Returns ErrUnknownItem, ErrItemAlreadyEquipped,
// ErrNotInParty, ErrFainted or ErrSlotOccupied without mutation.
func (r *Roster) EquipItem(id string, item *equipment.Item) error {
	if item == nil || r.items[item.InstanceID] != item {
		return ErrUnknownItem
	}
	if _, taken := r.equipped[item.InstanceID]; taken {
		return ErrItemAlreadyEquipped
	}
	i := indexOf(r.party, id)
	if i < 0 {
		return ErrNotInParty
	}
	live := i == r.activeIndex && r.active != nil
	if !live && r.party[i].Fainted() {
		return ErrFainted
	}
	if r.equippedOn(i) != "" {
		return ErrSlotOccupied
	}

	if live {
		r.active.Equip(item)
	} else {
		r.rules.EquipRecord(r.party[i], item)
	}
	r.equipped[item.InstanceID] = id
	r.logger.Debug("item equipped", zap.String("creature", id), zap.String("item", item.InstanceID))
	return nil
}

// DequipItem removes item from the party member id. A fainted member may be
// stripped of its item and stays fainted.
//
// Postcondition: Returns ErrUnknownItem, ErrNotInParty or ErrItemNotEquipped
// without mutation. Dequipping never faints a creature.
func (r *Roster) DequipItem(id string, item *equipment.Item) error {
	if item == nil || r.items[item.InstanceID] != item {
		return ErrUnknownItem
	}
	i := indexOf(r.party, id)
	if i < 0 {
		return ErrNotInParty
	}
	if owner, ok := r.equipped[item.InstanceID]; !ok || owner != id || r.equippedOn(i) != item.InstanceID {
		return ErrItemNotEquipped
	}

	if i == r.activeIndex && r.active != nil {
		r.active.Dequip(item)
	} else {
		r.rules.DequipRecord(r.party[i], item)
	}
	delete(r.equipped, item.InstanceID)
	r.logger.Debug("item dequipped", zap.String("creature", id), zap.String("item", item.InstanceID))
	return nil
}
