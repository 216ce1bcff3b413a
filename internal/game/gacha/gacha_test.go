package gacha_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/menagerie/internal/game/creature"
	"github.com/cory-johannsen/menagerie/internal/game/dice"
	"github.com/cory-johannsen/menagerie/internal/game/element"
	"github.com/cory-johannsen/menagerie/internal/game/equipment"
	"github.com/cory-johannsen/menagerie/internal/game/gacha"
)

type fakeInventory struct {
	creatures []*creature.Record
	items     []*equipment.Item
	err       error
}

func (f *fakeInventory) Acquire(rec *creature.Record) error {
	if f.err != nil {
		return f.err
	}
	f.creatures = append(f.creatures, rec)
	return nil
}

func (f *fakeInventory) AddItem(it *equipment.Item) error {
	if f.err != nil {
		return f.err
	}
	f.items = append(f.items, it)
	return nil
}

func pools() ([]*creature.Template, []*equipment.Def) {
	creatures := []*creature.Template{
		{ID: "emberling", Name: "Emberling", Element: element.Fire, Base: creature.BaseStats{MaxHealth: 100, AttackSpeed: 1, AttackDamage: 10}},
		{ID: "sproutle", Name: "Sproutle", Element: element.Grass, Base: creature.BaseStats{MaxHealth: 100, AttackSpeed: 1, AttackDamage: 8}},
	}
	items := []*equipment.Def{{ID: "charm", Name: "Charm", HealthModifierPercent: 10}}
	return creatures, items
}

func TestNewMachine_Validation(t *testing.T) {
	c, i := pools()
	_, err := gacha.NewMachine(c, i, 1.5, creature.DefaultRules(), dice.NewSeededSource(1), nil)
	assert.Error(t, err)
	_, err = gacha.NewMachine(nil, nil, 0.5, creature.DefaultRules(), dice.NewSeededSource(1), nil)
	assert.Error(t, err)
}

func TestRoll_CreatureBranch(t *testing.T) {
	c, i := pools()
	m, err := gacha.NewMachine(c, i, 0.5, creature.DefaultRules(), &dice.FixedSource{Values: []int{0, 1}}, zaptest.NewLogger(t))
	require.NoError(t, err)

	res := m.Roll()
	require.NotNil(t, res.Creature)
	assert.Nil(t, res.Item)
	assert.Equal(t, "sproutle", res.Creature.TemplateRef)
	assert.True(t, res.Creature.PlayerOwned)
	assert.Equal(t, 1, res.Creature.Level)
	assert.NotEmpty(t, res.Creature.UniqueID)
}

func TestRoll_ItemBranch(t *testing.T) {
	c, i := pools()
	m, err := gacha.NewMachine(c, i, 0.5, creature.DefaultRules(), &dice.FixedSource{Values: []int{999_999, 0}}, nil)
	require.NoError(t, err)

	a := m.Roll()
	b := m.Roll()
	require.NotNil(t, a.Item)
	require.NotNil(t, b.Item)
	assert.NotEqual(t, a.Item.InstanceID, b.Item.InstanceID, "instance IDs are assigned per acquisition")
	assert.Same(t, a.Item.Def, b.Item.Def)
}

func TestRoll_FallsBackToNonEmptyPool(t *testing.T) {
	c, _ := pools()
	m, err := gacha.NewMachine(c, nil, 0, creature.DefaultRules(), dice.NewSeededSource(7), nil)
	require.NoError(t, err)
	assert.NotNil(t, m.Roll().Creature)
}

func TestOpen(t *testing.T) {
	c, i := pools()
	m, err := gacha.NewMachine(c, i, 1, creature.DefaultRules(), dice.NewSeededSource(3), nil)
	require.NoError(t, err)
	inv := &fakeInventory{}
	w := gacha.NewWallet(1)

	res, err := m.Open(inv, w)
	require.NoError(t, err)
	require.Len(t, inv.creatures, 1)
	assert.Same(t, res.Creature, inv.creatures[0])
	assert.Equal(t, 0, w.Packs())

	_, err = m.Open(inv, w)
	assert.ErrorIs(t, err, gacha.ErrNoPacks)
	assert.Len(t, inv.creatures, 1)
}

func TestOpen_DeliveryFailureKeepsPack(t *testing.T) {
	c, i := pools()
	m, err := gacha.NewMachine(c, i, 1, creature.DefaultRules(), dice.NewSeededSource(3), nil)
	require.NoError(t, err)
	sentinel := errors.New("full")
	w := gacha.NewWallet(2)

	_, err = m.Open(&fakeInventory{err: sentinel}, w)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 2, w.Packs())
}

func TestWallet(t *testing.T) {
	w := gacha.NewWallet(-3)
	assert.Equal(t, 0, w.Packs())
	assert.ErrorIs(t, w.Spend(), gacha.ErrNoPacks)
	w.AddPacks(5)
	w.AddPacks(-2)
	assert.Equal(t, 5, w.Packs())
	require.NoError(t, w.Spend())
	assert.Equal(t, 4, w.Packs())
}

func TestBaseForms(t *testing.T) {
	all := []*creature.Template{
		{ID: "emberling", Evolution: &creature.Evolution{Into: "blazewing", Level: 10}},
		{ID: "blazewing"},
		{ID: "sproutle"},
	}
	var ids []string
	for _, tmpl := range gacha.BaseForms(all) {
		ids = append(ids, tmpl.ID)
	}
	assert.Equal(t, []string{"emberling", "sproutle"}, ids)
}

func TestProperty_OpenSpendsExactlyOnePack(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c, i := pools()
		chance := rapid.Float64Range(0, 1).Draw(rt, "chance")
		m, err := gacha.NewMachine(c, i, chance, creature.DefaultRules(), dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")), nil)
		if err != nil {
			rt.Fatal(err)
		}
		packs := rapid.IntRange(0, 20).Draw(rt, "packs")
		w := gacha.NewWallet(packs)
		inv := &fakeInventory{}
		opened := 0
		for {
			if _, err := m.Open(inv, w); err != nil {
				break
			}
			opened++
		}
		if opened != packs || len(inv.creatures)+len(inv.items) != packs || w.Packs() != 0 {
			rt.Fatalf("packs=%d opened=%d delivered=%d left=%d", packs, opened, len(inv.creatures)+len(inv.items), w.Packs())
		}
	})
}
