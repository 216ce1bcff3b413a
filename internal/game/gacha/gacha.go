// Package gacha opens packs that yield either a new creature or a new item.
package gacha

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/menagerie/internal/game/creature"
	"github.com/cory-johannsen/menagerie/internal/game/dice"
	"github.com/cory-johannsen/menagerie/internal/game/equipment"
)

// ErrNoPacks is returned when opening a pack with an empty wallet.
var ErrNoPacks = errors.New("no packs to open")

// Inventory receives what a pack yields. *roster.Roster implements it.
type Inventory interface {
	Acquire(rec *creature.Record) error
	AddItem(item *equipment.Item) error
}

// Result is the outcome of one roll. Exactly one field is non-nil.
type Result struct {
	Creature *creature.Record
	Item     *equipment.Item
}

// Name returns a display name for the result.
func (r Result) Name() string {
	switch {
	case r.Creature != nil:
		return r.Creature.TemplateRef
	case r.Item != nil:
		return r.Item.Def.Name
	default:
		return ""
	}
}

// Machine rolls packs from a creature pool and an item pool.
type Machine struct {
	creatures      []*creature.Template
	items          []*equipment.Def
	creatureChance float64
	rules          *creature.Rules
	src            dice.Source
	logger         *zap.Logger
}

// NewMachine builds a Machine.
//
// Precondition: creatureChance in [0, 1]; at least one pool is non-empty.
// Postcondition: Returns a Machine or an error describing the bad argument.
func NewMachine(creatures []*creature.Template, items []*equipment.Def, creatureChance float64, rules *creature.Rules, src dice.Source, logger *zap.Logger) (*Machine, error) {
	if creatureChance < 0 || creatureChance > 1 {
		return nil, fmt.Errorf("gacha: creature chance must be in [0, 1], got %v", creatureChance)
	}
	if len(creatures) == 0 && len(items) == 0 {
		return nil, errors.New("gacha: both pools are empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{
		creatures:      creatures,
		items:          items,
		creatureChance: creatureChance,
		rules:          rules,
		src:            src,
		logger:         logger,
	}, nil
}

// BaseForms returns the templates no other template evolves into, which is
// the default creature pool.
func BaseForms(all []*creature.Template) []*creature.Template {
	evolved := make(map[string]bool)
	for _, t := range all {
		if t.Evolution != nil {
			evolved[t.Evolution.Into] = true
		}
	}
	var out []*creature.Template
	for _, t := range all {
		if !evolved[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// Catalog returns every possible result, creatures first, for display.
func (m *Machine) Catalog() ([]*creature.Template, []*equipment.Def) {
	return m.creatures, m.items
}

// Roll draws one result. A creature is drawn with probability creatureChance;
// when the chosen pool is empty the other pool is used.
//
// Postcondition: Creature results are player owned, level 1, with a fresh
// uniqueID. Item results carry a fresh instance ID.
func (m *Machine) Roll() Result {
	wantCreature := dice.Chance(m.src, m.creatureChance)
	if len(m.items) == 0 {
		wantCreature = true
	}
	if len(m.creatures) == 0 {
		wantCreature = false
	}
	if wantCreature {
		tmpl := m.creatures[dice.Pick(m.src, len(m.creatures))]
		return Result{Creature: m.rules.NewRecord(tmpl, 1, true)}
	}
	def := m.items[dice.Pick(m.src, len(m.items))]
	return Result{Item: equipment.Acquire(def)}
}

// Open spends one pack from w and delivers the rolled result into inv.
//
// Postcondition: Returns ErrNoPacks without rolling when w is empty. If
// delivery fails the pack is not spent.
func (m *Machine) Open(inv Inventory, w *Wallet) (Result, error) {
	if w.Packs() == 0 {
		return Result{}, ErrNoPacks
	}
	res := m.Roll()
	var err error
	if res.Creature != nil {
		err = inv.Acquire(res.Creature)
	} else {
		err = inv.AddItem(res.Item)
	}
	if err != nil {
		return Result{}, fmt.Errorf("gacha: delivering %q: %w", res.Name(), err)
	}
	if err := w.Spend(); err != nil {
		return Result{}, err
	}
	m.logger.Info("pack opened",
		zap.String("result", res.Name()),
		zap.Bool("creature", res.Creature != nil),
		zap.Int("packsLeft", w.Packs()),
	)
	return res, nil
}
