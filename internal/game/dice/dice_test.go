package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/menagerie/internal/game/dice"
)

func TestChance_Extremes(t *testing.T) {
	src := &dice.FixedSource{Values: []int{0}}
	assert.False(t, dice.Chance(src, 0))
	assert.True(t, dice.Chance(src, 1))
	assert.True(t, dice.Chance(src, 0.5))
}

func TestChance_HighRollFails(t *testing.T) {
	src := &dice.FixedSource{Values: []int{999_999}}
	assert.False(t, dice.Chance(src, 0.5))
}

func TestBetween_Degenerate(t *testing.T) {
	src := &dice.FixedSource{Values: []int{7}}
	assert.Equal(t, 3, dice.Between(src, 3, 3))
	assert.Equal(t, 3, dice.Between(src, 3, 1))
}

func TestFixedSource_Cycles(t *testing.T) {
	src := &dice.FixedSource{Values: []int{1, 2}}
	assert.Equal(t, 1, src.Intn(10))
	assert.Equal(t, 2, src.Intn(10))
	assert.Equal(t, 1, src.Intn(10))
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestCryptoSource_PanicsOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
}

func TestRoller_LogsChance(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewLoggedRoller(&dice.FixedSource{Values: []int{0}}, zap.New(core))
	assert.True(t, r.Chance("capture", 0.25))
	entries := logs.FilterMessage("chance roll").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "capture", entries[0].ContextMap()["reason"])
	}
}

func TestProperty_SourcesStayInRange(t *testing.T) {
	crypto := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 10_000).Draw(rt, "n")
		seed := rapid.Uint64().Draw(rt, "seed")
		for _, src := range []dice.Source{crypto, dice.NewSeededSource(seed)} {
			v := src.Intn(n)
			if v < 0 || v >= n {
				rt.Fatalf("Intn(%d) = %d out of range", n, v)
			}
		}
	})
}

func TestProperty_BetweenInclusive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-100, 100).Draw(rt, "lo")
		hi := rapid.IntRange(lo, lo+100).Draw(rt, "hi")
		v := dice.Between(dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")), lo, hi)
		if v < lo || v > hi {
			rt.Fatalf("Between(%d, %d) = %d", lo, hi, v)
		}
	})
}
