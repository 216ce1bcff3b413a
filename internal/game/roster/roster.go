// Package roster owns a player's collected creatures: the bench, the party of
// at most PartySize, the owned equipment and which creature wears it, and the
// single live Entity for the active party slot. Every transition between a
// creature's Record and its Entity goes through this package.
package roster

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/menagerie/internal/game/creature"
	"github.com/cory-johannsen/menagerie/internal/game/dice"
	"github.com/cory-johannsen/menagerie/internal/game/equipment"
	"github.com/cory-johannsen/menagerie/internal/game/reward"
)

// PartySize is the maximum number of creatures in the party.
const PartySize = 3

// TemplateResolver supplies species data when materializing an Entity.
type TemplateResolver interface {
	Template(ref string) (*creature.Template, bool)
}

// SpawnPlacer chooses where a newly materialized Entity appears.
type SpawnPlacer interface {
	FindSpawnNear(p creature.Position) creature.Position
}

// World is the live simulation that wild creatures are removed from.
type World interface {
	RemoveEntity(id string)
}

// DropSink spawns the pickups a defeated wild creature leaves behind.
type DropSink interface {
	SpawnDrops(pos creature.Position, templateRef string, drops []reward.Pickup)
}

// Options configures a Roster. Templates is required; nil collaborators are
// skipped.
type Options struct {
	Templates TemplateResolver
	Rules     *creature.Rules
	Placer    SpawnPlacer
	World     World
	Drops     DropSink
	Source    dice.Source
	// Listener is subscribed to every Entity the roster materializes or spawns.
	Listener creature.Listener
	// PendingXPCap bounds the XP a creature may bank while inactive; 0 means unlimited.
	PendingXPCap int
	Logger       *zap.Logger
}

// Roster manages bench and party Records and the one live party Entity.
// A Roster is not safe for concurrent use; drive it from a single goroutine.
type Roster struct {
	templates TemplateResolver
	rules     *creature.Rules
	placer    SpawnPlacer
	world     World
	drops     DropSink
	src       dice.Source
	listener  creature.Listener
	xpCap     int
	logger    *zap.Logger

	bench       []*creature.Record
	party       []*creature.Record
	activeIndex int
	active      *creature.Entity
	unsubscribe func()
	anchor      creature.Position

	items    map[string]*equipment.Item
	equipped map[string]string // item instance ID -> creature uniqueID
	wild     map[string]*creature.Entity
}

// New creates an empty Roster.
//
// Precondition: opts.Templates must be non-nil.
// Postcondition: Returns a Roster with empty bench, party and inventory.
func New(opts Options) *Roster {
	if opts.Rules == nil {
		opts.Rules = creature.DefaultRules()
	}
	if opts.Source == nil {
		opts.Source = dice.NewCryptoSource()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Roster{
		templates: opts.Templates,
		rules:     opts.Rules,
		placer:    opts.Placer,
		world:     opts.World,
		drops:     opts.Drops,
		src:       opts.Source,
		listener:  opts.Listener,
		xpCap:     opts.PendingXPCap,
		logger:    opts.Logger,
		items:     make(map[string]*equipment.Item),
		equipped:  make(map[string]string),
		wild:      make(map[string]*creature.Entity),
	}
}

// Rules returns the stat rules shared by every creature in the roster.
func (r *Roster) Rules() *creature.Rules {
	return r.rules
}

// SetAnchor sets the point newly materialized entities spawn near.
func (r *Roster) SetAnchor(p creature.Position) {
	r.anchor = p
}

// invariant logs and wraps an invariant violation.
func (r *Roster) invariant(op string, err error) error {
	r.logger.Error("roster invariant violated", zap.String("op", op), zap.Error(err))
	return &InvariantError{Op: op, Err: err}
}

// contains reports whether uniqueID is anywhere in the roster.
func (r *Roster) contains(id string) bool {
	return indexOf(r.bench, id) >= 0 || indexOf(r.party, id) >= 0
}

func indexOf(recs []*creature.Record, id string) int {
	for i, rec := range recs {
		if rec.UniqueID == id {
			return i
		}
	}
	return -1
}

func removeAt(recs []*creature.Record, i int) []*creature.Record {
	return append(recs[:i], recs[i+1:]...)
}

// Acquire adds a newly obtained creature to the bench. The roster keeps its
// own copy of rec.
//
// Precondition: rec must be non-nil.
// Postcondition: On success rec is on the bench; any item it wears must be
// owned and unequipped and becomes mapped to it.
func (r *Roster) Acquire(rec *creature.Record) error {
	if rec == nil {
		return r.invariant("acquire", fmt.Errorf("nil record"))
	}
	if err := rec.Validate(); err != nil {
		return r.invariant("acquire", err)
	}
	if !rec.PlayerOwned {
		return ErrNotPlayerOwned
	}
	if r.contains(rec.UniqueID) {
		return ErrDuplicateCreature
	}
	if _, ok := r.templates.Template(rec.TemplateRef); !ok {
		return r.invariant("acquire", fmt.Errorf("template %q not found for %q", rec.TemplateRef, rec.UniqueID))
	}
	itemID := rec.EquippedItemID()
	if itemID != "" {
		if _, ok := r.items[itemID]; !ok {
			return ErrUnknownItem
		}
		if _, taken := r.equipped[itemID]; taken {
			return ErrItemAlreadyEquipped
		}
		r.equipped[itemID] = rec.UniqueID
	}
	r.bench = append(r.bench, rec.Clone())
	r.logger.Debug("creature acquired",
		zap.String("creature", rec.UniqueID),
		zap.String("template", rec.TemplateRef),
		zap.Int("level", rec.Level),
	)
	return nil
}

// AddItem adds an acquired equipment instance to the owned inventory.
func (r *Roster) AddItem(item *equipment.Item) error {
	if item == nil || item.Def == nil || item.InstanceID == "" {
		return ErrUnknownItem
	}
	if _, dup := r.items[item.InstanceID]; dup {
		return ErrDuplicateItem
	}
	r.items[item.InstanceID] = item
	r.logger.Debug("item acquired", zap.String("item", item.InstanceID), zap.String("def", item.Def.ID))
	return nil
}

// Item returns the owned item with the given instance ID.
func (r *Roster) Item(id string) (*equipment.Item, bool) {
	it, ok := r.items[id]
	return it, ok
}

// Items returns every owned item sorted by instance ID.
func (r *Roster) Items() []*equipment.Item {
	out := make([]*equipment.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstanceID < out[j].InstanceID })
	return out
}

// EquippedBy returns the uniqueID of the creature wearing itemID.
func (r *Roster) EquippedBy(itemID string) (string, bool) {
	id, ok := r.equipped[itemID]
	return id, ok
}

// view returns a copy of party[i], overlaid with the live Entity's state when
// i is the active slot.
func (r *Roster) view(i int) *creature.Record {
	c := r.party[i].Clone()
	if i == r.activeIndex && r.active != nil {
		if err := r.active.SnapshotInto(c); err != nil {
			r.logger.Error("snapshot failed", zap.Error(err))
		}
	}
	return c
}

// Bench returns copies of the bench records in acquisition order.
func (r *Roster) Bench() []*creature.Record {
	out := make([]*creature.Record, len(r.bench))
	for i, rec := range r.bench {
		out[i] = rec.Clone()
	}
	return out
}

// Party returns copies of the party records in slot order. The active slot
// reflects its live Entity.
func (r *Roster) Party() []*creature.Record {
	out := make([]*creature.Record, len(r.party))
	for i := range r.party {
		out[i] = r.view(i)
	}
	return out
}

// Record returns a copy of the record for id wherever it is.
func (r *Roster) Record(id string) (*creature.Record, bool) {
	if i := indexOf(r.party, id); i >= 0 {
		return r.view(i), true
	}
	if i := indexOf(r.bench, id); i >= 0 {
		return r.bench[i].Clone(), true
	}
	return nil, false
}

// ActiveIndex returns the active party slot. It is 0 when the party is empty.
func (r *Roster) ActiveIndex() int {
	return r.activeIndex
}

// ActiveID returns the uniqueID of the active party member.
func (r *Roster) ActiveID() (string, bool) {
	if len(r.party) == 0 {
		return "", false
	}
	return r.party[r.activeIndex].UniqueID, true
}

// HasLiveEntity reports whether the active slot currently has an Entity.
func (r *Roster) HasLiveEntity() bool {
	return r.active != nil
}
