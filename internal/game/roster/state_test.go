package roster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/menagerie/internal/game/creature"
	"github.com/cory-johannsen/menagerie/internal/game/element"
	"github.com/cory-johannsen/menagerie/internal/game/equipment"
	"github.com/cory-johannsen/menagerie/internal/game/roster"
)

func itemRegistry(t *testing.T, defs ...*equipment.Def) *equipment.Registry {
	t.Helper()
	reg, err := equipment.NewRegistryFrom(defs)
	require.NoError(t, err)
	return reg
}

func TestExportImport_RoundTrip(t *testing.T) {
	f := newFixture(t, roster.Options{})
	ids := f.party(t)
	bench := f.acquire(t, "emberling")
	it := f.item(t, 20)
	spare := f.item(t, 5)
	require.NoError(t, f.r.EquipItem(ids[1], it))
	require.NoError(t, f.r.GrantPartyWideXP(30))
	e, _ := f.r.Active()
	e.ApplyDamage(12, element.None)

	st := f.r.Export()
	assert.True(t, f.r.HasLiveEntity(), "export does not destroy the entity")
	require.NoError(t, st.Validate())
	assert.Equal(t, ids, st.Party)
	assert.Equal(t, []string{bench}, st.Bench)
	assert.Equal(t, map[string]string{it.InstanceID: ids[1]}, st.Equipped)
	assert.Equal(t, "charm", st.Items[spare.InstanceID])
	assert.Equal(t, 30, st.Creatures[ids[1]].Pending.XP)
	assert.Equal(t, 88.0, st.Creatures[ids[0]].CurrentHealth)

	data, err := roster.EncodeState(st)
	require.NoError(t, err)
	decoded, err := roster.DecodeState(data)
	require.NoError(t, err)
	assert.Equal(t, st, decoded)

	restored, err := roster.Import(decoded, itemRegistry(t, it.Def), roster.Options{Templates: f.reg, Logger: zap.NewNop()})
	require.NoError(t, err)
	assert.False(t, restored.HasLiveEntity(), "imported rosters have no live entity")
	assert.Equal(t, st, restored.Export())

	require.NoError(t, restored.SwitchActive(ids[1]))
	live, err := restored.Active()
	require.NoError(t, err)
	assert.Equal(t, it.InstanceID, live.Item().InstanceID)
	assert.Equal(t, 30, live.XP())
}

func TestImport_Rejects(t *testing.T) {
	f := newFixture(t, roster.Options{})
	ids := f.party(t)
	it := f.item(t, 20)
	require.NoError(t, f.r.EquipItem(ids[1], it))
	items := itemRegistry(t, it.Def)
	opts := roster.Options{Templates: f.reg, Logger: zap.NewNop()}

	cases := map[string]func(s *roster.State){
		"unknown template":    func(s *roster.State) { s.Creatures[ids[0]].TemplateRef = "missing" },
		"listed twice":        func(s *roster.State) { s.Bench = append(s.Bench, ids[0]) },
		"unlisted creature":   func(s *roster.State) { s.Party = s.Party[:2] },
		"active out of range": func(s *roster.State) { s.ActiveIndex = 3 },
		"equip disagrees":     func(s *roster.State) { s.Equipped[it.InstanceID] = ids[0] },
		"unowned item":        func(s *roster.State) { delete(s.Items, it.InstanceID) },
		"worn but unindexed":  func(s *roster.State) { delete(s.Equipped, it.InstanceID) },
		"party too large": func(s *roster.State) {
			rec := f.r.Rules().NewRecord(mustTemplate(t, f.reg, "emberling"), 1, true)
			s.Creatures[rec.UniqueID] = rec
			s.Party = append(s.Party, rec.UniqueID)
		},
		"key mismatch": func(s *roster.State) {
			s.Creatures[ids[0]].UniqueID = "other"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			st := f.r.Export()
			mutate(st)
			_, err := roster.Import(st, items, opts)
			assert.Error(t, err)
		})
	}

	t.Run("unknown item definition", func(t *testing.T) {
		_, err := roster.Import(f.r.Export(), itemRegistry(t), opts)
		assert.Error(t, err)
	})
}

func TestDecodeState_Invalid(t *testing.T) {
	_, err := roster.DecodeState([]byte("party: [ghost]\n"))
	assert.Error(t, err)
	_, err = roster.DecodeState([]byte("::"))
	assert.Error(t, err)
}

func TestDecodeState_NullRecord(t *testing.T) {
	cases := map[string]string{
		"listed":   "creatures:\n  abc: null\nbench: [abc]\nparty: []\n",
		"unlisted": "creatures:\n  abc: null\nbench: []\nparty: []\n",
		"equipped": "creatures:\n  abc: null\nbench: [abc]\nparty: []\nitems:\n  i1: band\nequipped:\n  i1: abc\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() {
				_, err = roster.DecodeState([]byte(doc))
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), `creature "abc" has no record`)
		})
	}
}

func mustTemplate(t *testing.T, reg roster.TemplateResolver, ref string) *creature.Template {
	t.Helper()
	tmpl, ok := reg.Template(ref)
	require.True(t, ok)
	return tmpl
}
