package growth_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/menagerie/internal/game/growth"
)

func TestDefault_WorkedValues(t *testing.T) {
	c := growth.Default()
	assert.Equal(t, 1.0, c.Multiplier(1))
	assert.InDelta(t, 1.4, c.Multiplier(5), 1e-12)
	assert.Equal(t, 50, c.XPToNext(1))
	assert.Equal(t, 100, c.XPToNext(2))
}

func TestMultiplier_ClampsOutOfRange(t *testing.T) {
	c := growth.Default()
	assert.Equal(t, c.Multiplier(1), c.Multiplier(0))
	assert.Equal(t, c.Multiplier(1), c.Multiplier(-7))
	assert.Equal(t, c.Multiplier(growth.MaxLevel), c.Multiplier(99))
}

func TestNew_RejectsDecreasing(t *testing.T) {
	mult := make([]float64, growth.MaxLevel)
	xp := make([]int, growth.MaxLevel)
	for i := range mult {
		mult[i] = 1 + float64(i)
		xp[i] = 10
	}
	mult[10] = 0.5
	_, err := growth.New(mult, xp)
	assert.Error(t, err)
}

func TestNew_RejectsLevelOneNotUnity(t *testing.T) {
	mult := make([]float64, growth.MaxLevel)
	xp := make([]int, growth.MaxLevel)
	for i := range mult {
		mult[i] = 2
		xp[i] = 10
	}
	_, err := growth.New(mult, xp)
	assert.Error(t, err)
}

func TestNew_RejectsWrongLength(t *testing.T) {
	_, err := growth.New([]float64{1}, []int{10})
	assert.Error(t, err)
}

func TestNew_RejectsNonPositiveXP(t *testing.T) {
	mult := make([]float64, growth.MaxLevel)
	xp := make([]int, growth.MaxLevel)
	for i := range mult {
		mult[i] = 1
		xp[i] = 10
	}
	xp[3] = 0
	_, err := growth.New(mult, xp)
	assert.Error(t, err)
}

func TestLoadFromBytes_Linear(t *testing.T) {
	c, err := growth.LoadFromBytes([]byte("linear:\n  step: 0.2\nxp_base: 10\n"))
	require.NoError(t, err)
	assert.InDelta(t, 1.8, c.Multiplier(5), 1e-12)
	assert.Equal(t, 30, c.XPToNext(3))
}

func TestNew_RejectsNonFinite(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1)} {
		mult := make([]float64, growth.MaxLevel)
		xp := make([]int, growth.MaxLevel)
		for i := range mult {
			mult[i] = 1 + 0.1*float64(i)
			xp[i] = 10
		}
		mult[1] = bad
		_, err := growth.New(mult, xp)
		assert.Error(t, err)
	}
}

func TestLoadFromBytes_RejectsNaNMultiplier(t *testing.T) {
	vals := make([]string, growth.MaxLevel)
	for i := range vals {
		vals[i] = "1.0"
	}
	vals[1] = ".nan"
	_, err := growth.LoadFromBytes([]byte("multipliers: [" + strings.Join(vals, ", ") + "]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finite")
}

func TestLoadFromBytes_RequiresExactlyOneForm(t *testing.T) {
	_, err := growth.LoadFromBytes([]byte("xp_base: 10\n"))
	assert.Error(t, err)
}

func TestLoadScript(t *testing.T) {
	c, err := growth.LoadScript(`
function growth(level) return 1 + (level - 1) * 0.05 end
function xp_to_next(level) return 40 + level * 10 end
`, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.2, c.Multiplier(5), 1e-12)
	assert.Equal(t, 50, c.XPToNext(1))
}

func TestLoadScript_RejectsNonMonotonic(t *testing.T) {
	_, err := growth.LoadScript(`
function growth(level) if level == 1 then return 1 end return 1 / level end
function xp_to_next(level) return 10 end
`, 0)
	assert.Error(t, err)
}

func TestLoadScript_MissingFunction(t *testing.T) {
	_, err := growth.LoadScript(`function growth(level) return 1 end`, 0)
	assert.Error(t, err)
}

func TestLoadScript_InstructionLimit(t *testing.T) {
	_, err := growth.LoadScript(`while true do end`, 50)
	assert.Error(t, err)
}

func TestProperty_MonotonicAndUnityAtOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		step := rapid.Float64Range(0, 1).Draw(rt, "step")
		base := rapid.IntRange(1, 500).Draw(rt, "xpBase")
		c, err := growth.Linear(step, base)
		require.NoError(rt, err)
		assert.Equal(rt, 1.0, c.Multiplier(1))
		for level := growth.MinLevel + 1; level <= growth.MaxLevel; level++ {
			if c.Multiplier(level) < c.Multiplier(level-1) {
				rt.Fatalf("growth(%d)=%v < growth(%d)=%v", level, c.Multiplier(level), level-1, c.Multiplier(level-1))
			}
			if c.XPToNext(level) <= 0 {
				rt.Fatalf("xpToNext(%d) = %d", level, c.XPToNext(level))
			}
		}
	})
}
