package roster

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/menagerie/internal/game/growth"
)

// GrantPartyWideXP gives amount XP to every party member. The live active
// Entity levels immediately; every other member banks the XP as a pending
// reward, bounded by the pending XP cap.
//
// Postcondition: Returns ErrInvalidAmount or ErrPartyEmpty without mutation.
func (r *Roster) GrantPartyWideXP(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if len(r.party) == 0 {
		return ErrPartyEmpty
	}
	for i, rec := range r.party {
		if i == r.activeIndex && r.active != nil {
			r.active.GainXP(amount)
			continue
		}
		if rec.Level >= growth.MaxLevel {
			continue
		}
		rec.Pending.XP += amount
		if r.xpCap > 0 && rec.Pending.XP > r.xpCap {
			rec.Pending.XP = r.xpCap
		}
	}
	r.logger.Debug("party xp granted", zap.Int("amount", amount), zap.Int("partySize", len(r.party)))
	return nil
}

// HealParty fully heals every party member. The live active Entity heals
// immediately; every other member's stored health is restored at once and
// the heal is flagged for its next activation.
//
// Postcondition: Returns ErrPartyEmpty without mutation. Fainted inactive
// members are revived.
func (r *Roster) HealParty() error {
	if len(r.party) == 0 {
		return ErrPartyEmpty
	}
	for i, rec := range r.party {
		if i == r.activeIndex && r.active != nil {
			r.active.FullHeal()
			continue
		}
		rec.Pending.NeedsHeal = true
		rec.CurrentHealth = rec.MaxHealth
	}
	r.logger.Debug("party healed", zap.Int("partySize", len(r.party)))
	return nil
}

// GrantActiveXP gives amount XP to the active Entity only, materializing it
// if necessary.
func (r *Roster) GrantActiveXP(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	e, err := r.Active()
	if err != nil {
		return err
	}
	e.GainXP(amount)
	return nil
}
