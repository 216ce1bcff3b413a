package reward_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/menagerie/internal/game/dice"
	"github.com/cory-johannsen/menagerie/internal/game/reward"
)

type fakeParty struct {
	activeXP, partyXP, heals int
	err                      error
}

func (f *fakeParty) GrantActiveXP(n int) error    { f.activeXP += n; return f.err }
func (f *fakeParty) GrantPartyWideXP(n int) error { f.partyXP += n; return f.err }
func (f *fakeParty) HealParty() error             { f.heals++; return f.err }

type fakeWallet struct{ packs int }

func (w *fakeWallet) AddPacks(n int) { w.packs += n }

func TestDropTable_Validate(t *testing.T) {
	ok := reward.DropTable{Entries: []reward.DropEntry{{Kind: reward.KindXPOrb, Chance: 1, Min: 5, Max: 10}}}
	assert.NoError(t, ok.Validate())

	bad := []reward.DropTable{
		{Entries: []reward.DropEntry{{Kind: "gold", Chance: 1}}},
		{Entries: []reward.DropEntry{{Kind: reward.KindHeal, Chance: 0}}},
		{Entries: []reward.DropEntry{{Kind: reward.KindHeal, Chance: 1.5}}},
		{Entries: []reward.DropEntry{{Kind: reward.KindXPOrb, Chance: 1, Min: 10, Max: 5}}},
		{Entries: []reward.DropEntry{{Kind: reward.KindXPOrb, Chance: 1, Min: -1, Max: 5}}},
	}
	for i, dt := range bad {
		assert.Error(t, dt.Validate(), "table %d", i)
	}
	assert.NoError(t, (&reward.DropTable{}).Validate())
}

func TestGenerateDrops_DefaultAmounts(t *testing.T) {
	dt := reward.DropTable{Entries: []reward.DropEntry{
		{Kind: reward.KindXPOrb, Chance: 1},
		{Kind: reward.KindLootBag, Chance: 1},
	}}
	drops := reward.GenerateDrops(dt, &dice.FixedSource{Values: []int{0}})
	require.Len(t, drops, 2)
	assert.Equal(t, 10, drops[0].Amount)
	assert.Equal(t, 5, drops[1].Amount)
	assert.NotEqual(t, drops[0].ID, drops[1].ID)
}

func TestGenerateDrops_ChanceMiss(t *testing.T) {
	dt := reward.DropTable{Entries: []reward.DropEntry{{Kind: reward.KindHeal, Chance: 0.1}}}
	drops := reward.GenerateDrops(dt, &dice.FixedSource{Values: []int{999_999}})
	assert.Empty(t, drops)
}

func TestCollect_Dispatch(t *testing.T) {
	p := &fakeParty{}
	w := &fakeWallet{}
	require.NoError(t, reward.Collect(reward.Pickup{Kind: reward.KindXPOrb, Amount: 10}, p, w))
	require.NoError(t, reward.Collect(reward.Pickup{Kind: reward.KindSuperXPOrb, Amount: 100}, p, w))
	require.NoError(t, reward.Collect(reward.Pickup{Kind: reward.KindHeal}, p, w))
	require.NoError(t, reward.Collect(reward.Pickup{Kind: reward.KindLootBag, Amount: 5}, p, w))
	assert.Equal(t, 10, p.activeXP)
	assert.Equal(t, 100, p.partyXP)
	assert.Equal(t, 1, p.heals)
	assert.Equal(t, 5, w.packs)
}

func TestCollect_PropagatesRosterError(t *testing.T) {
	sentinel := errors.New("no active creature")
	p := &fakeParty{err: sentinel}
	err := reward.Collect(reward.Pickup{Kind: reward.KindXPOrb, Amount: 1}, p, &fakeWallet{})
	assert.ErrorIs(t, err, sentinel)
}

func TestCollect_UnknownKind(t *testing.T) {
	assert.Error(t, reward.Collect(reward.Pickup{Kind: "gold"}, &fakeParty{}, &fakeWallet{}))
}

func TestProperty_DropAmountsWithinRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(0, 50).Draw(rt, "min")
		hi := rapid.IntRange(lo, lo+50).Draw(rt, "max")
		if hi == 0 {
			hi = 1
		}
		dt := reward.DropTable{Entries: []reward.DropEntry{{Kind: reward.KindXPOrb, Chance: 1, Min: lo, Max: hi}}}
		src := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		for _, d := range reward.GenerateDrops(dt, src) {
			if d.Amount < lo || d.Amount > hi {
				rt.Fatalf("amount %d outside [%d, %d]", d.Amount, lo, hi)
			}
		}
	})
}
