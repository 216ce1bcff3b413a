package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/menagerie/internal/game/creature"
	"github.com/cory-johannsen/menagerie/internal/game/dice"
	"github.com/cory-johannsen/menagerie/internal/game/element"
	"github.com/cory-johannsen/menagerie/internal/game/equipment"
	"github.com/cory-johannsen/menagerie/internal/game/gacha"
	"github.com/cory-johannsen/menagerie/internal/game/reward"
	"github.com/cory-johannsen/menagerie/internal/game/roster"
	"github.com/cory-johannsen/menagerie/internal/sim"
)

type fixture struct {
	registry *creature.Registry
	items    *equipment.Registry
	rules    *creature.Rules
	src      dice.Source
}

func newFixture(t *testing.T, player, wild creature.BaseStats, drops *reward.DropTable) *fixture {
	t.Helper()
	reg, err := creature.NewRegistry([]*creature.Template{
		{ID: "embercub", Name: "Embercub", Element: element.Fire, Base: player, CaptureChallenge: 50},
		{ID: "mossling", Name: "Mossling", Element: element.None, Base: wild, CaptureChallenge: 50, Drops: drops},
	})
	require.NoError(t, err)
	items, err := equipment.NewRegistryFrom([]*equipment.Def{
		{ID: "charm", Name: "Charm", HealthModifierPercent: 10, DamageModifierPercent: 10},
	})
	require.NoError(t, err)
	return &fixture{registry: reg, items: items, rules: creature.DefaultRules(), src: dice.NewSeededSource(7)}
}

func (f *fixture) options(t *testing.T, packs int) sim.SessionOptions {
	t.Helper()
	embercub, _ := f.registry.Template("embercub")
	m, err := gacha.NewMachine([]*creature.Template{embercub}, f.items.All(), 1, f.rules, f.src, zaptest.NewLogger(t))
	require.NoError(t, err)
	return sim.SessionOptions{
		Roster:   roster.Options{Templates: f.registry, Rules: f.rules},
		Machine:  m,
		Wallet:   gacha.NewWallet(packs),
		Source:   f.src,
		Logger:   zaptest.NewLogger(t),
		WildPool: []string{"mossling"},
	}
}

func assertRosterInvariants(t *testing.T, s *sim.Session) {
	t.Helper()
	r := s.Roster()
	assert.LessOrEqual(t, len(r.Party()), roster.PartySize)
	if len(r.Party()) > 0 {
		assert.GreaterOrEqual(t, r.ActiveIndex(), 0)
		assert.Less(t, r.ActiveIndex(), len(r.Party()))
	}
	require.NoError(t, s.State().Validate())
}

func TestNewSession_RejectsBadOptions(t *testing.T) {
	f := newFixture(t, creature.BaseStats{MaxHealth: 10}, creature.BaseStats{MaxHealth: 10}, nil)

	opts := f.options(t, 0)
	opts.WildPool = nil
	_, err := sim.NewSession(opts)
	assert.Error(t, err)

	opts = f.options(t, 0)
	opts.WildPool = []string{"ghost"}
	_, err = sim.NewSession(opts)
	assert.Error(t, err)

	opts = f.options(t, 0)
	opts.Machine = nil
	_, err = sim.NewSession(opts)
	assert.Error(t, err)
}

func TestSession_FirstTickFieldsPartyAndSpawnsWild(t *testing.T) {
	f := newFixture(t,
		creature.BaseStats{MaxHealth: 100, AttackSpeed: 1, AttackDamage: 1},
		creature.BaseStats{MaxHealth: 1000, AttackSpeed: 1, AttackDamage: 1},
		nil)
	s, err := sim.NewSession(f.options(t, 2))
	require.NoError(t, err)

	s.Tick(1)

	assert.Equal(t, 2, s.Stats().PacksOpened)
	assert.Equal(t, 0, s.Wallet().Packs())
	assert.Len(t, s.Roster().Party(), 2)
	assert.True(t, s.Roster().HasLiveEntity())
	assert.Len(t, s.Roster().Wild(), 1)
	assertRosterInvariants(t, s)
}

func TestSession_DefeatsWildAndCollectsDrops(t *testing.T) {
	drops := &reward.DropTable{Entries: []reward.DropEntry{
		{Kind: reward.KindXPOrb, Chance: 1, Min: 10, Max: 10},
		{Kind: reward.KindLootBag, Chance: 1, Min: 1, Max: 1},
	}}
	f := newFixture(t,
		creature.BaseStats{MaxHealth: 100, AttackSpeed: 2, AttackDamage: 500},
		creature.BaseStats{MaxHealth: 10, AttackSpeed: 1, AttackDamage: 1},
		drops)
	s, err := sim.NewSession(f.options(t, 1))
	require.NoError(t, err)

	for n := uint64(1); n <= 20; n++ {
		s.Tick(n)
		assertRosterInvariants(t, s)
	}

	st := s.Stats()
	assert.Equal(t, uint64(20), st.Ticks)
	assert.Greater(t, st.Defeated, 0)
	assert.Greater(t, st.Pickups, 0)
	assert.Greater(t, st.PacksOpened, 1)
	assert.Len(t, s.Roster().Party(), roster.PartySize)
	assert.NotEmpty(t, s.Roster().Bench())
	assert.Zero(t, st.HubReturns)

	active, err := s.Roster().Active()
	require.NoError(t, err)
	assert.Greater(t, active.XP()+active.Level(), 1)
}

func TestSession_ReturnsToHubWhenPartyFaints(t *testing.T) {
	f := newFixture(t,
		creature.BaseStats{MaxHealth: 10, AttackSpeed: 1, AttackDamage: 1},
		creature.BaseStats{MaxHealth: 1000, AttackSpeed: 1, AttackDamage: 1000},
		nil)
	s, err := sim.NewSession(f.options(t, 1))
	require.NoError(t, err)

	s.Tick(1)
	assert.Equal(t, 1, s.Stats().Fainted)
	assert.False(t, s.Roster().HasLiveEntity())
	require.True(t, s.Roster().Party()[0].Fainted())

	s.Tick(2)
	assert.Equal(t, 1, s.Stats().HubReturns)
	assertRosterInvariants(t, s)
}

func TestSession_ResumeRestoresRosterAndPacks(t *testing.T) {
	f := newFixture(t,
		creature.BaseStats{MaxHealth: 100, AttackSpeed: 1, AttackDamage: 1},
		creature.BaseStats{MaxHealth: 1000, AttackSpeed: 1, AttackDamage: 1},
		nil)
	s, err := sim.NewSession(f.options(t, 2))
	require.NoError(t, err)
	s.Tick(1)
	s.Wallet().AddPacks(3)

	saved := s.State()
	assert.Equal(t, 3, saved.Packs)

	resumed, err := sim.ResumeSession(f.options(t, 0), saved, f.items)
	require.NoError(t, err)
	assert.Equal(t, 3, resumed.Wallet().Packs())
	assert.Equal(t, saved.Party, resumed.State().Party)
	assert.Equal(t, saved.Bench, resumed.State().Bench)
}
