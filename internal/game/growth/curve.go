// Package growth maps creature level to stat multipliers and XP thresholds.
package growth

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// MinLevel is the lowest creature level.
	MinLevel = 1
	// MaxLevel is the level cap.
	MaxLevel = 30
)

// DefaultStep is the per-level multiplier increment of the default curve.
const DefaultStep = 0.1

// DefaultXPBase is the per-level XP threshold factor of the default curve.
const DefaultXPBase = 50

// Curve is an immutable level → multiplier and level → XP-threshold table.
//
// Invariant: Multiplier(1) == 1.0; Multiplier is monotonic non-decreasing on
// [MinLevel, MaxLevel]; XPToNext(level) > 0 for every level.
type Curve struct {
	mult [MaxLevel + 1]float64
	xp   [MaxLevel + 1]int
}

// New builds a Curve from explicit per-level tables, index 0 being level 1.
//
// Precondition: len(multipliers) == len(xpToNext) == MaxLevel; every
// multiplier is finite.
// Postcondition: Returns a Curve satisfying all invariants, or an error.
func New(multipliers []float64, xpToNext []int) (*Curve, error) {
	if len(multipliers) != MaxLevel {
		return nil, fmt.Errorf("growth curve: want %d multipliers, got %d", MaxLevel, len(multipliers))
	}
	if len(xpToNext) != MaxLevel {
		return nil, fmt.Errorf("growth curve: want %d xp thresholds, got %d", MaxLevel, len(xpToNext))
	}
	if multipliers[0] != 1.0 {
		return nil, fmt.Errorf("growth curve: multiplier at level 1 must be 1.0, got %v", multipliers[0])
	}
	c := &Curve{}
	for i := range multipliers {
		level := i + 1
		if math.IsNaN(multipliers[i]) || math.IsInf(multipliers[i], 0) {
			return nil, fmt.Errorf("growth curve: multiplier at level %d must be finite, got %v", level, multipliers[i])
		}
		if i > 0 && multipliers[i] < multipliers[i-1] {
			return nil, fmt.Errorf("growth curve: multiplier decreases at level %d (%v < %v)", level, multipliers[i], multipliers[i-1])
		}
		if xpToNext[i] <= 0 {
			return nil, fmt.Errorf("growth curve: xp threshold at level %d must be > 0, got %d", level, xpToNext[i])
		}
		c.mult[level] = multipliers[i]
		c.xp[level] = xpToNext[i]
	}
	return c, nil
}

// Linear builds the curve growth(level) = 1 + step*(level-1) with
// xpToNext(level) = xpBase*level.
//
// Precondition: step >= 0; xpBase > 0.
func Linear(step float64, xpBase int) (*Curve, error) {
	if step < 0 {
		return nil, fmt.Errorf("growth curve: step must be >= 0, got %v", step)
	}
	if xpBase <= 0 {
		return nil, fmt.Errorf("growth curve: xp base must be > 0, got %d", xpBase)
	}
	mult := make([]float64, MaxLevel)
	xp := make([]int, MaxLevel)
	for i := range mult {
		mult[i] = 1 + step*float64(i)
		xp[i] = xpBase * (i + 1)
	}
	return New(mult, xp)
}

// Default returns the linear curve with DefaultStep and DefaultXPBase, so that
// growth(5) == 1.4 and xpToNext(1) == 50.
func Default() *Curve {
	c, err := Linear(DefaultStep, DefaultXPBase)
	if err != nil {
		panic("growth: default curve invalid: " + err.Error())
	}
	return c
}

// Clamp limits level to [MinLevel, MaxLevel].
func Clamp(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// Multiplier returns the stat multiplier for level, clamped into range.
func (c *Curve) Multiplier(level int) float64 {
	return c.mult[Clamp(level)]
}

// XPToNext returns the XP needed to advance from level to level+1.
func (c *Curve) XPToNext(level int) int {
	return c.xp[Clamp(level)]
}

// curveFile is the YAML form of a curve file.
type curveFile struct {
	Linear *struct {
		Step float64 `yaml:"step"`
	} `yaml:"linear"`
	Multipliers []float64 `yaml:"multipliers"`
	XPBase      int       `yaml:"xp_base"`
	XPToNext    []int     `yaml:"xp_to_next"`
}

// LoadFromBytes parses a curve file. Exactly one of "linear" or
// "multipliers" must be present; XP comes from "xp_to_next" or, when absent,
// from "xp_base" (default DefaultXPBase).
func LoadFromBytes(data []byte) (*Curve, error) {
	var fs curveFile
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("parsing growth curve YAML: %w", err)
	}
	if (fs.Linear == nil) == (fs.Multipliers == nil) {
		return nil, errors.New("growth curve: exactly one of linear or multipliers must be set")
	}
	xpBase := fs.XPBase
	if xpBase == 0 {
		xpBase = DefaultXPBase
	}
	xp := fs.XPToNext
	if xp == nil {
		xp = make([]int, MaxLevel)
		for i := range xp {
			xp[i] = xpBase * (i + 1)
		}
	}
	mult := fs.Multipliers
	if fs.Linear != nil {
		if fs.Linear.Step < 0 {
			return nil, fmt.Errorf("growth curve: step must be >= 0, got %v", fs.Linear.Step)
		}
		mult = make([]float64, MaxLevel)
		for i := range mult {
			mult[i] = 1 + fs.Linear.Step*float64(i)
		}
	}
	return New(mult, xp)
}

// Load reads a curve file from path.
//
// Precondition: path must name a readable YAML file.
func Load(path string) (*Curve, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading growth curve %q: %w", path, err)
	}
	c, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return c, nil
}
