package creature

import "github.com/cory-johannsen/menagerie/internal/game/element"

// EventKind identifies an Entity lifecycle event.
type EventKind int

const (
	// EventDamaged fires after ApplyDamage lowers health.
	EventDamaged EventKind = iota
	// EventHealed fires after Heal or FullHeal raises health.
	EventHealed
	// EventLeveledUp fires once per level gained.
	EventLeveledUp
	// EventDied fires when health reaches zero.
	EventDied
	// EventEvolved fires after a successful Evolve.
	EventEvolved
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventDamaged:
		return "damaged"
	case EventHealed:
		return "healed"
	case EventLeveledUp:
		return "leveledUp"
	case EventDied:
		return "died"
	case EventEvolved:
		return "evolved"
	default:
		return "unknown"
	}
}

// Event describes one lifecycle change of an Entity.
// Fields that do not apply to Kind are zero.
type Event struct {
	Kind   EventKind
	Entity *Entity
	// Amount is the damage applied or health restored.
	Amount float64
	// Multiplier is the effectiveness multiplier of a damage event.
	Multiplier float64
	Tier       element.Tier
	// Level is the new level of a level-up or evolution.
	Level int
	// Into is the template a creature evolved into.
	Into string
}

// Listener observes Entity events. Listeners run synchronously on the
// goroutine that mutated the Entity and must not rely on being called in
// any particular order relative to each other.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

// OnEvent calls f(ev).
func (f ListenerFunc) OnEvent(ev Event) { f(ev) }

// DeathHandler receives an Entity whose health reached zero.
type DeathHandler interface {
	HandleDeath(e *Entity)
}
