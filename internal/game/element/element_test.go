package element_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/menagerie/internal/game/element"
)

func kindGen() *rapid.Generator[element.Kind] {
	return rapid.SampledFrom(element.Kinds)
}

func TestDefaultTable_Triangle(t *testing.T) {
	tbl := element.DefaultTable()
	assert.Equal(t, 2.0, tbl.Effectiveness(element.Fire, element.Grass))
	assert.Equal(t, 2.0, tbl.Effectiveness(element.Grass, element.Water))
	assert.Equal(t, 2.0, tbl.Effectiveness(element.Water, element.Fire))
	assert.Equal(t, 0.5, tbl.Effectiveness(element.Grass, element.Fire))
	assert.Equal(t, 0.5, tbl.Effectiveness(element.Water, element.Grass))
	assert.Equal(t, 0.5, tbl.Effectiveness(element.Fire, element.Water))
	assert.Equal(t, 1.0, tbl.Effectiveness(element.Fire, element.Fire))
}

func TestEffectiveness_NoneIsNeutral(t *testing.T) {
	tbl := element.DefaultTable()
	for _, k := range element.Kinds {
		assert.Equal(t, 1.0, tbl.Effectiveness(element.None, k))
		assert.Equal(t, 1.0, tbl.Effectiveness(k, element.None))
	}
}

func TestNilTable_IsNeutral(t *testing.T) {
	var tbl *element.Table
	assert.Equal(t, 1.0, tbl.Effectiveness(element.Fire, element.Grass))
}

func TestSet_RejectsNonPositive(t *testing.T) {
	tbl := element.NewTable()
	assert.Error(t, tbl.Set(element.Fire, element.Grass, 0))
	assert.Error(t, tbl.Set(element.Fire, element.Grass, -1))
	assert.Error(t, tbl.Set("plasma", element.Grass, 2))
}

func TestLoadTableFromBytes(t *testing.T) {
	tbl, err := element.LoadTableFromBytes([]byte(`
fire:
  grass: 3.0
water:
  fire: 1.25
`))
	require.NoError(t, err)
	assert.Equal(t, 3.0, tbl.Effectiveness(element.Fire, element.Grass))
	assert.Equal(t, 1.25, tbl.Effectiveness(element.Water, element.Fire))
	assert.Equal(t, 1.0, tbl.Effectiveness(element.Grass, element.Water))
}

func TestLoadTableFromBytes_UnknownElement(t *testing.T) {
	_, err := element.LoadTableFromBytes([]byte("plasma:\n  fire: 2.0\n"))
	assert.Error(t, err)
}

func TestLoadTableFromBytes_ZeroMultiplier(t *testing.T) {
	_, err := element.LoadTableFromBytes([]byte("fire:\n  grass: 0\n"))
	assert.Error(t, err)
}

func TestSet_RejectsNonFinite(t *testing.T) {
	tbl := element.NewTable()
	assert.Error(t, tbl.Set(element.Fire, element.Grass, math.NaN()))
	assert.Error(t, tbl.Set(element.Fire, element.Grass, math.Inf(1)))
	assert.Equal(t, 1.0, tbl.Effectiveness(element.Fire, element.Grass))
}

func TestLoadTableFromBytes_NonFiniteMultiplier(t *testing.T) {
	for _, v := range []string{".nan", ".inf"} {
		_, err := element.LoadTableFromBytes([]byte("fire:\n  grass: " + v + "\n"))
		assert.Error(t, err, v)
	}
}

func TestParse(t *testing.T) {
	k, err := element.Parse("")
	require.NoError(t, err)
	assert.Equal(t, element.None, k)

	k, err = element.Parse("water")
	require.NoError(t, err)
	assert.Equal(t, element.Water, k)

	_, err = element.Parse("lightning")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, element.TierSuperEffective, element.Classify(2.0))
	assert.Equal(t, element.TierEffective, element.Classify(1.5))
	assert.Equal(t, element.TierEffective, element.Classify(1.2))
	assert.Equal(t, element.TierNeutral, element.Classify(1.0))
	assert.Equal(t, element.TierResisted, element.Classify(0.5))
	assert.Equal(t, "super effective", element.TierSuperEffective.String())
}

func TestProperty_EffectivenessTotalAndPositive(t *testing.T) {
	tbl := element.DefaultTable()
	rapid.Check(t, func(rt *rapid.T) {
		a := kindGen().Draw(rt, "attacker")
		d := kindGen().Draw(rt, "defender")
		m := tbl.Effectiveness(a, d)
		if m <= 0 {
			rt.Fatalf("effectiveness(%s, %s) = %v, want > 0", a, d, m)
		}
	})
}

func TestProperty_ClassifyMatchesThresholds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := rapid.Float64Range(0.01, 5).Draw(rt, "multiplier")
		tier := element.Classify(m)
		switch {
		case m > 1.5:
			assert.Equal(rt, element.TierSuperEffective, tier)
		case m < 1.0:
			assert.Equal(rt, element.TierResisted, tier)
		default:
			assert.Contains(rt, []element.Tier{element.TierNeutral, element.TierEffective}, tier)
		}
	})
}
