package notify

import (
	"fmt"

	"github.com/cory-johannsen/menagerie/internal/game/creature"
	"github.com/cory-johannsen/menagerie/internal/game/element"
)

// Watcher is a creature.Listener that forwards events to a Sink.
type Watcher struct {
	sink Sink
}

// NewWatcher returns a Watcher notifying sink.
//
// Precondition: sink must be non-nil.
func NewWatcher(sink Sink) *Watcher {
	return &Watcher{sink: sink}
}

// OnEvent implements creature.Listener.
func (w *Watcher) OnEvent(ev creature.Event) {
	n, ok := Translate(ev)
	if ok {
		w.sink.Notify(n)
	}
}

// tierColor maps a damage tier to its display color.
var tierColor = map[element.Tier]Color{
	element.TierNeutral:        ColorWhite,
	element.TierEffective:      ColorYellow,
	element.TierSuperEffective: ColorOrange,
	element.TierResisted:       ColorGray,
}

// Translate renders ev as a notification. Heals that restored nothing
// produce no notification.
func Translate(ev creature.Event) (Notification, bool) {
	e := ev.Entity
	name := e.Name()
	icon := e.Template().Icon
	switch ev.Kind {
	case creature.EventDamaged:
		msg := fmt.Sprintf("%s took %.0f damage", name, ev.Amount)
		if ev.Tier != element.TierNeutral {
			msg = fmt.Sprintf("%s (%s)", msg, ev.Tier)
		}
		return Notification{Message: msg, Icon: icon, Color: tierColor[ev.Tier]}, true
	case creature.EventHealed:
		if ev.Amount <= 0 {
			return Notification{}, false
		}
		return Notification{Message: fmt.Sprintf("%s recovered %.0f health", name, ev.Amount), Icon: icon, Color: ColorGreen}, true
	case creature.EventLeveledUp:
		return Notification{Message: fmt.Sprintf("%s reached level %d!", name, ev.Level), Icon: icon, Color: ColorGold}, true
	case creature.EventDied:
		if e.PlayerOwned() {
			return Notification{Message: fmt.Sprintf("%s fainted", name), Icon: icon, Color: ColorRed}, true
		}
		return Notification{Message: fmt.Sprintf("Wild %s was defeated", name), Icon: icon, Color: ColorGray}, true
	case creature.EventEvolved:
		return Notification{Message: fmt.Sprintf("Your creature evolved into %s!", name), Icon: icon, Color: ColorBlue}, true
	default:
		return Notification{}, false
	}
}
