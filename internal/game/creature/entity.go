package creature

import (
	"errors"

	"github.com/google/uuid"

	"github.com/cory-johannsen/menagerie/internal/game/element"
	"github.com/cory-johannsen/menagerie/internal/game/equipment"
	"github.com/cory-johannsen/menagerie/internal/game/growth"
)

// ErrCannotEvolve is returned by Evolve when the evolution is not available.
var ErrCannotEvolve = errors.New("creature cannot evolve")

// Position is a point in the simulated world.
type Position struct {
	X, Y, Z float64
}

// Entity is a live, stateful creature built from a Record.
// Entity is not safe for concurrent use.
type Entity struct {
	id          string
	tmpl        *Template
	base        BaseStats
	elem        element.Kind
	playerOwned bool
	level       int
	xp          int
	health      float64
	evolution   int
	item        *equipment.Item
	stats       Stats
	pos         Position
	dead        bool

	rules     *Rules
	death     DeathHandler
	listeners []listenerSlot
	nextSlot  int
}

type listenerSlot struct {
	id int
	l  Listener
}

// NewWild spawns a wild (not player-owned) entity of tmpl at level.
//
// Precondition: tmpl and rules must be non-nil.
// Postcondition: Health equals MaxHealth; ID is a fresh uuid.
func NewWild(tmpl *Template, level int, rules *Rules) *Entity {
	e := &Entity{
		id:    uuid.New().String(),
		tmpl:  tmpl,
		base:  tmpl.Base,
		elem:  tmpl.Element,
		level: growth.Clamp(level),
		rules: rules,
	}
	e.recompute()
	e.health = e.stats.MaxHealth
	return e
}

// ID returns the creature's uniqueID.
func (e *Entity) ID() string { return e.id }

// Template returns the creature's current species template.
func (e *Entity) Template() *Template { return e.tmpl }

// TemplateRef returns the ID of the creature's current template.
func (e *Entity) TemplateRef() string { return e.tmpl.ID }

// Name returns the species display name.
func (e *Entity) Name() string { return e.tmpl.Name }

// Element returns the creature's element.
func (e *Entity) Element() element.Kind { return e.elem }

// PlayerOwned reports whether the creature belongs to the player.
func (e *Entity) PlayerOwned() bool { return e.playerOwned }

// Level returns the current level.
func (e *Entity) Level() int { return e.level }

// XP returns the XP accumulated toward the next level.
func (e *Entity) XP() int { return e.xp }

// XPToNextLevel returns the threshold for the next level, or 0 at the cap.
func (e *Entity) XPToNextLevel() int { return e.rules.xpToNext(e.level) }

// Health returns current health.
func (e *Entity) Health() float64 { return e.health }

// Stats returns the derived stats.
func (e *Entity) Stats() Stats { return e.stats }

// MaxHealth returns the derived maximum health.
func (e *Entity) MaxHealth() float64 { return e.stats.MaxHealth }

// AttackDamage returns the derived attack damage.
func (e *Entity) AttackDamage() float64 { return e.stats.AttackDamage }

// Item returns the equipped item, or nil.
func (e *Entity) Item() *equipment.Item { return e.item }

// EvolutionState returns how many times the creature has evolved.
func (e *Entity) EvolutionState() int { return e.evolution }

// Position returns the world position.
func (e *Entity) Position() Position { return e.pos }

// SetPosition moves the entity.
func (e *Entity) SetPosition(p Position) { e.pos = p }

// IsDead reports whether the creature has fainted or died.
func (e *Entity) IsDead() bool { return e.dead }

// SetDeathHandler installs the handler Die hands off to.
func (e *Entity) SetDeathHandler(h DeathHandler) { e.death = h }

// Subscribe registers l and returns a function that removes it.
func (e *Entity) Subscribe(l Listener) func() {
	id := e.nextSlot
	e.nextSlot++
	e.listeners = append(e.listeners, listenerSlot{id: id, l: l})
	return func() {
		for i, s := range e.listeners {
			if s.id == id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Detach drops all listeners and the death handler. Called when the Entity is
// destroyed so that stale references cannot reach the roster.
func (e *Entity) Detach() {
	e.listeners = nil
	e.death = nil
}

func (e *Entity) emit(ev Event) {
	ev.Entity = e
	snapshot := make([]listenerSlot, len(e.listeners))
	copy(snapshot, e.listeners)
	for _, s := range snapshot {
		s.l.OnEvent(ev)
	}
}

// recompute refreshes the derived stats. It does not touch health.
func (e *Entity) recompute() {
	e.stats = e.rules.Derive(e.base, e.elem, e.level, e.playerOwned, e.item)
}

// ApplyDamage applies amount of attacker-element damage scaled by elemental
// effectiveness.
//
// Postcondition: Returns the scaled damage; health is clamped into
// [0, MaxHealth]; Die is called when health reaches 0. Non-positive amounts
// and dead entities return 0 and change nothing.
func (e *Entity) ApplyDamage(amount float64, attacker element.Kind) float64 {
	if amount <= 0 || e.dead {
		return 0
	}
	mult := e.rules.Affinity.Effectiveness(attacker, e.elem)
	applied := amount * mult
	e.health = clamp(e.health-applied, 0, e.stats.MaxHealth)
	e.emit(Event{Kind: EventDamaged, Amount: applied, Multiplier: mult, Tier: element.Classify(mult)})
	if e.health == 0 {
		e.Die()
	}
	return applied
}

// Attack deals this creature's attack damage to target.
//
// Precondition: target must be non-nil.
func (e *Entity) Attack(target *Entity) float64 {
	if e.dead {
		return 0
	}
	return target.ApplyDamage(e.stats.AttackDamage, e.elem)
}

// Heal restores up to amount health and returns the health actually gained.
func (e *Entity) Heal(amount float64) float64 {
	if amount <= 0 || e.dead {
		return 0
	}
	before := e.health
	e.health = clamp(e.health+amount, 0, e.stats.MaxHealth)
	gained := e.health - before
	e.emit(Event{Kind: EventHealed, Amount: gained})
	return gained
}

// FullHeal restores health to MaxHealth.
func (e *Entity) FullHeal() float64 {
	return e.Heal(e.stats.MaxHealth)
}

// GainXP adds XP and applies every level-up it pays for.
//
// Postcondition: A single grant yields the same level and XP as any split of
// the same total. XP is zero at MaxLevel. Returns the number of levels gained.
func (e *Entity) GainXP(amount int) int {
	if amount <= 0 || e.level >= growth.MaxLevel {
		return 0
	}
	e.xp += amount
	gained := 0
	for e.level < growth.MaxLevel && e.xp >= e.rules.Growth.XPToNext(e.level) {
		e.xp -= e.rules.Growth.XPToNext(e.level)
		oldMax := e.stats.MaxHealth
		e.level++
		e.recompute()
		e.health = raiseHealth(e.health, oldMax, e.stats.MaxHealth)
		gained++
		e.emit(Event{Kind: EventLeveledUp, Level: e.level})
	}
	if e.level >= growth.MaxLevel {
		e.xp = 0
	}
	return gained
}

// Equip wears item.
//
// Postcondition: Returns false and changes nothing if an item is already
// equipped or item is nil. Otherwise any MaxHealth increase is added to
// current health.
func (e *Entity) Equip(item *equipment.Item) bool {
	if item == nil || e.item != nil {
		return false
	}
	oldMax := e.stats.MaxHealth
	e.item = item
	e.recompute()
	e.health = raiseHealth(e.health, oldMax, e.stats.MaxHealth)
	return true
}

// Dequip removes item.
//
// Postcondition: Returns false and changes nothing unless item is the one
// equipped. Otherwise any MaxHealth decrease is subtracted from current
// health, floored at 1.
func (e *Entity) Dequip(item *equipment.Item) bool {
	if item == nil || e.item == nil || e.item.InstanceID != item.InstanceID {
		return false
	}
	oldMax := e.stats.MaxHealth
	e.item = nil
	e.recompute()
	e.health = lowerHealth(e.health, oldMax, e.stats.MaxHealth)
	return true
}

// CanEvolve reports whether the creature has reached its evolution level.
func (e *Entity) CanEvolve() bool {
	ev := e.tmpl.Evolution
	return !e.dead && ev != nil && e.level >= ev.Level
}

// Evolve turns the creature into the species into.
//
// Precondition: into must be non-nil.
// Postcondition: On success base stats, element and template are replaced,
// EvolutionState increments, and health follows the level-up rule. Returns
// ErrCannotEvolve and changes nothing otherwise.
func (e *Entity) Evolve(into *Template) error {
	if !e.CanEvolve() || e.tmpl.Evolution.Into != into.ID {
		return ErrCannotEvolve
	}
	oldMax := e.stats.MaxHealth
	e.tmpl = into
	e.base = into.Base
	e.elem = into.Element
	e.evolution++
	e.recompute()
	e.health = raiseHealth(e.health, oldMax, e.stats.MaxHealth)
	e.emit(Event{Kind: EventEvolved, Level: e.level, Into: into.ID})
	return nil
}

// Die forces health to zero and hands the entity to its death handler.
// The entity is not destroyed here; the handler decides what happens next.
// Calling Die on a dead entity does nothing.
func (e *Entity) Die() {
	if e.dead {
		return
	}
	e.health = 0
	e.dead = true
	e.emit(Event{Kind: EventDied, Level: e.level})
	if e.death != nil {
		e.death.HandleDeath(e)
	}
}
