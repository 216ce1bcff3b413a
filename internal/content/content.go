// Package content loads the YAML and Lua game data named by configuration
// into the registries and rules the roster and session consume.
package content

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/menagerie/internal/config"
	"github.com/cory-johannsen/menagerie/internal/game/creature"
	"github.com/cory-johannsen/menagerie/internal/game/element"
	"github.com/cory-johannsen/menagerie/internal/game/equipment"
	"github.com/cory-johannsen/menagerie/internal/game/growth"
	"github.com/cory-johannsen/menagerie/internal/scripting"
)

// Bundle is the loaded, validated game data.
type Bundle struct {
	Templates *creature.Registry
	Items     *equipment.Registry
	Rules     *creature.Rules
}

// Load reads creatures, items, the affinity table and the growth curve.
//
// Precondition: cc must have passed config validation.
// Postcondition: Returns a Bundle whose templates' evolution targets all
// resolve, or an error naming the first bad file or reference.
func Load(cc config.ContentConfig, rc config.RosterConfig, logger *zap.Logger) (*Bundle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	start := time.Now()
	templates, err := creature.LoadTemplates(cc.CreaturesDir)
	if err != nil {
		return nil, fmt.Errorf("loading creatures: %w", err)
	}
	reg, err := creature.NewRegistry(templates)
	if err != nil {
		return nil, fmt.Errorf("registering creatures: %w", err)
	}
	logger.Info("loaded creatures", zap.Int("count", reg.Len()), zap.Duration("duration", time.Since(start)))

	start = time.Now()
	defs, err := equipment.LoadDefs(cc.ItemsDir)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	items, err := equipment.NewRegistryFrom(defs)
	if err != nil {
		return nil, fmt.Errorf("registering items: %w", err)
	}
	logger.Info("loaded items", zap.Int("count", len(defs)), zap.Duration("duration", time.Since(start)))

	rules, err := LoadRules(cc, rc)
	if err != nil {
		return nil, err
	}
	return &Bundle{Templates: reg, Items: items, Rules: rules}, nil
}

// LoadRules builds the shared stat rules. Unset files fall back to the
// built-in affinity table and growth curve.
func LoadRules(cc config.ContentConfig, rc config.RosterConfig) (*creature.Rules, error) {
	rules := creature.DefaultRules()
	rules.PartyModifier = rc.PartyModifier
	if rules.PartyModifier <= 0 {
		rules.PartyModifier = 1.0
	}

	if cc.AffinityFile != "" {
		tbl, err := element.LoadTable(cc.AffinityFile)
		if err != nil {
			return nil, fmt.Errorf("loading affinity table: %w", err)
		}
		rules.Affinity = tbl
	}

	switch {
	case cc.GrowthFile != "" && cc.GrowthScript != "":
		return nil, fmt.Errorf("growth file and growth script are mutually exclusive")
	case cc.GrowthFile != "":
		c, err := growth.Load(cc.GrowthFile)
		if err != nil {
			return nil, fmt.Errorf("loading growth curve: %w", err)
		}
		rules.Growth = c
	case cc.GrowthScript != "":
		c, err := growth.LoadScriptFile(cc.GrowthScript, scripting.DefaultInstructionLimit)
		if err != nil {
			return nil, fmt.Errorf("loading growth script: %w", err)
		}
		rules.Growth = c
	}
	return rules, nil
}

// WildPool resolves the configured wild pool, defaulting to every template.
//
// Postcondition: Every returned ref resolves in b.Templates.
func (b *Bundle) WildPool(refs []string) ([]string, error) {
	if len(refs) == 0 {
		all := b.Templates.All()
		out := make([]string, 0, len(all))
		for _, t := range all {
			out = append(out, t.ID)
		}
		return out, nil
	}
	for _, ref := range refs {
		if _, ok := b.Templates.Template(ref); !ok {
			return nil, fmt.Errorf("wild pool: unknown creature %q", ref)
		}
	}
	return refs, nil
}
