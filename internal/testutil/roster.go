package testutil

import (
	"testing"

	"go.uber.org/zap"

	"github.com/cory-johannsen/menagerie/internal/game/creature"
	"github.com/cory-johannsen/menagerie/internal/game/element"
	"github.com/cory-johannsen/menagerie/internal/game/equipment"
	"github.com/cory-johannsen/menagerie/internal/game/roster"
)

// Templates returns a small registry covering every element.
func Templates(t *testing.T) *creature.Registry {
	t.Helper()
	reg, err := creature.NewRegistry([]*creature.Template{
		{ID: "emberling", Name: "Emberling", Element: element.Fire,
			Base: creature.BaseStats{MaxHealth: 100, Speed: 5, AttackSpeed: 1, AttackDamage: 10}},
		{ID: "sproutle", Name: "Sproutle", Element: element.Grass,
			Base: creature.BaseStats{MaxHealth: 100, Speed: 4, AttackSpeed: 1, AttackDamage: 8}},
		{ID: "puddlet", Name: "Puddlet", Element: element.Water,
			Base: creature.BaseStats{MaxHealth: 90, Speed: 6, AttackSpeed: 1.1, AttackDamage: 9}},
		{ID: "pebble", Name: "Pebble", Element: element.None,
			Base: creature.BaseStats{MaxHealth: 120, Speed: 2, AttackSpeed: 0.8, AttackDamage: 7}},
	})
	if err != nil {
		t.Fatalf("building templates: %v", err)
	}
	return reg
}

// Items returns the item definitions used by SampleState.
func Items(t *testing.T) *equipment.Registry {
	t.Helper()
	reg, err := equipment.NewRegistryFrom([]*equipment.Def{
		{ID: "charm", Name: "Charm", HealthModifierPercent: 20, DamageModifierPercent: 5},
		{ID: "fang", Name: "Fang", DamageModifierPercent: 25, Element: element.Fire},
	})
	if err != nil {
		t.Fatalf("building items: %v", err)
	}
	return reg
}

// SampleState builds a roster with a full party, one benched creature, an
// equipped and a spare item, banked XP and a wounded active member, and
// exports it with packs set.
func SampleState(t *testing.T) *roster.State {
	t.Helper()
	reg := Templates(t)
	items := Items(t)
	r := roster.New(roster.Options{Templates: reg, Logger: zap.NewNop()})

	var ids []string
	for _, ref := range []string{"emberling", "sproutle", "puddlet", "pebble"} {
		tmpl, _ := reg.Template(ref)
		rec := r.Rules().NewRecord(tmpl, 2, true)
		must(t, r.Acquire(rec))
		ids = append(ids, rec.UniqueID)
	}
	for _, id := range ids[:3] {
		must(t, r.MoveToParty(id))
	}
	charm, _ := items.Def("charm")
	fang, _ := items.Def("fang")
	worn := equipment.Acquire(charm)
	must(t, r.AddItem(worn))
	must(t, r.AddItem(equipment.Acquire(fang)))
	must(t, r.EquipItem(ids[1], worn))
	must(t, r.GrantPartyWideXP(30))
	must(t, r.SwitchActive(ids[2]))
	active, err := r.Active()
	must(t, err)
	active.ApplyDamage(15, element.Fire)

	s := r.Export()
	s.Packs = 2
	return s
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("building sample roster: %v", err)
	}
}
