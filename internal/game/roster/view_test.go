package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/menagerie/internal/game/creature"
	"github.com/cory-johannsen/menagerie/internal/game/element"
)

type oneTemplate struct{ tmpl *creature.Template }

func (o oneTemplate) Template(ref string) (*creature.Template, bool) {
	return o.tmpl, ref == o.tmpl.ID
}

func TestView_LogsSnapshotFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	tmpl := &creature.Template{
		ID: "emberling", Name: "Emberling", Element: element.Fire,
		Base: creature.BaseStats{MaxHealth: 100, Speed: 5, AttackSpeed: 1, AttackDamage: 10},
	}
	r := New(Options{Templates: oneTemplate{tmpl}, Logger: zap.New(core)})
	rec := r.Rules().NewRecord(tmpl, 1, true)
	require.NoError(t, r.Acquire(rec))
	require.NoError(t, r.MoveToParty(rec.UniqueID))
	_, err := r.Active()
	require.NoError(t, err)

	// A stored record no longer owned by the live entity cannot take its snapshot.
	r.party[r.activeIndex].UniqueID = "stray"
	got := r.view(r.activeIndex)

	assert.Equal(t, "stray", got.UniqueID)
	require.Equal(t, 1, logs.FilterMessage("snapshot failed").Len())
}
