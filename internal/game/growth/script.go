package growth

import (
	"fmt"
	"math"
	"os"

	"github.com/cory-johannsen/menagerie/internal/scripting"
)

// Lua function names a growth script must define.
const (
	scriptGrowthFn = "growth"
	scriptXPFn     = "xp_to_next"
)

// LoadScript evaluates a sandboxed Lua script defining growth(level) and
// xp_to_next(level), samples both at every level once, and returns the
// resulting Curve. The Lua state does not outlive this call.
//
// Precondition: instLimit >= 0; 0 uses scripting.DefaultInstructionLimit.
// Postcondition: Returns a Curve satisfying all Curve invariants, or an error.
func LoadScript(src string, instLimit int) (*Curve, error) {
	L := scripting.NewSandboxedState(instLimit)
	defer L.Close()

	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("growth script: %w", err)
	}

	mult := make([]float64, MaxLevel)
	xp := make([]int, MaxLevel)
	for i := range mult {
		level := i + 1
		m, err := scripting.CallNumber(L, scriptGrowthFn, level)
		if err != nil {
			return nil, fmt.Errorf("growth script: %w", err)
		}
		x, err := scripting.CallNumber(L, scriptXPFn, level)
		if err != nil {
			return nil, fmt.Errorf("growth script: %w", err)
		}
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return nil, fmt.Errorf("growth script: growth(%d) is not finite", level)
		}
		mult[i] = m
		xp[i] = int(math.Round(x))
	}
	return New(mult, xp)
}

// LoadScriptFile reads and evaluates a Lua growth script from path.
func LoadScriptFile(path string, instLimit int) (*Curve, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading growth script %q: %w", path, err)
	}
	c, err := LoadScript(string(data), instLimit)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return c, nil
}
