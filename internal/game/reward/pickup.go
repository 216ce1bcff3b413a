package reward

import "fmt"

// PartyRewards is the subset of the roster that pickups act on.
type PartyRewards interface {
	GrantActiveXP(amount int) error
	GrantPartyWideXP(amount int) error
	HealParty() error
}

// PackWallet receives gacha packs from loot bags.
type PackWallet interface {
	AddPacks(n int)
}

// Collect applies a pickup's effect.
//
// Precondition: party and wallet must be non-nil.
// Postcondition: Returns the roster's validation error unchanged when the
// effect could not be applied; unknown kinds return an error and apply nothing.
func Collect(p Pickup, party PartyRewards, wallet PackWallet) error {
	switch p.Kind {
	case KindXPOrb:
		return party.GrantActiveXP(p.Amount)
	case KindSuperXPOrb:
		return party.GrantPartyWideXP(p.Amount)
	case KindHeal:
		return party.HealParty()
	case KindLootBag:
		wallet.AddPacks(p.Amount)
		return nil
	default:
		return fmt.Errorf("reward: unknown pickup kind %q", p.Kind)
	}
}
