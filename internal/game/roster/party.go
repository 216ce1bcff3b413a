package roster

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/menagerie/internal/game/creature"
	"github.com/cory-johannsen/menagerie/internal/game/equipment"
)

// materialization holds everything needed to build an Entity for a record,
// resolved and validated before any roster state changes.
type materialization struct {
	rec  *creature.Record
	tmpl *creature.Template
	item *equipment.Item
}

// prepare validates rec and resolves its template and equipped item.
func (r *Roster) prepare(op string, rec *creature.Record) (*materialization, error) {
	if err := rec.Validate(); err != nil {
		return nil, r.invariant(op, err)
	}
	tmpl, ok := r.templates.Template(rec.TemplateRef)
	if !ok {
		return nil, r.invariant(op, fmt.Errorf("template %q not found for %q", rec.TemplateRef, rec.UniqueID))
	}
	m := &materialization{rec: rec, tmpl: tmpl}
	if id := rec.EquippedItemID(); id != "" {
		item, ok := r.items[id]
		if !ok {
			return nil, r.invariant(op, fmt.Errorf("equipped item %q of %q is not owned", id, rec.UniqueID))
		}
		if owner := r.equipped[id]; owner != rec.UniqueID {
			return nil, r.invariant(op, fmt.Errorf("equipped item %q of %q is mapped to %q", id, rec.UniqueID, owner))
		}
		m.item = item
	}
	return m, nil
}

// instantiate builds the live Entity for a prepared record, applies and
// clears its pending reward, and makes it the active Entity.
//
// Precondition: no Entity is live; m came from prepare.
func (r *Roster) instantiate(op string, m *materialization) (*creature.Entity, error) {
	e, err := creature.Restore(m.rec, m.tmpl, m.item, r.rules)
	if err != nil {
		return nil, r.invariant(op, err)
	}
	pos := r.anchor
	if r.placer != nil {
		pos = r.placer.FindSpawnNear(r.anchor)
	}
	e.SetPosition(pos)
	e.SetDeathHandler(r)
	if r.listener != nil {
		r.unsubscribe = e.Subscribe(r.listener)
	}

	pending := m.rec.Pending
	if pending.XP > 0 {
		e.GainXP(pending.XP)
	}
	if pending.NeedsHeal {
		e.FullHeal()
	}
	m.rec.Pending = creature.PendingReward{}

	r.active = e
	r.logger.Debug("entity materialized",
		zap.String("creature", e.ID()),
		zap.Int("slot", r.activeIndex),
		zap.Int("pendingXP", pending.XP),
		zap.Bool("pendingHeal", pending.NeedsHeal),
	)
	return e, nil
}

// release snapshots the live Entity into its record and destroys it.
func (r *Roster) release() {
	if r.active == nil {
		return
	}
	rec := r.party[r.activeIndex]
	if err := r.active.SnapshotInto(rec); err != nil {
		// The active entity always owns party[activeIndex].
		r.logger.Error("snapshot failed", zap.Error(err))
	}
	r.destroy()
}

func (r *Roster) destroy() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	r.active.Detach()
	r.logger.Debug("entity destroyed", zap.String("creature", r.active.ID()))
	r.active = nil
}

// MoveToParty moves a bench creature into the party. If the party was empty
// the creature becomes active and its Entity is materialized, unless it has
// fainted.
//
// Postcondition: Returns ErrPartyFull or ErrNotOnBench without mutation.
func (r *Roster) MoveToParty(id string) error {
	if len(r.party) >= PartySize {
		return ErrPartyFull
	}
	i := indexOf(r.bench, id)
	if i < 0 {
		return ErrNotOnBench
	}
	rec := r.bench[i]
	first := len(r.party) == 0

	var m *materialization
	if first && !rec.Fainted() {
		var err error
		if m, err = r.prepare("moveToParty", rec); err != nil {
			return err
		}
	}

	r.bench = removeAt(r.bench, i)
	r.party = append(r.party, rec)
	if first {
		r.activeIndex = 0
	}
	r.logger.Debug("moved to party", zap.String("creature", id), zap.Int("partySize", len(r.party)))
	if m != nil {
		if _, err := r.instantiate("moveToParty", m); err != nil {
			return err
		}
	}
	return nil
}

// MoveToMain moves a party creature back to the bench, snapshotting and
// destroying its Entity first if it is active. Its equipped item stays
// equipped.
//
// Postcondition: Returns ErrNotInParty without mutation. activeIndex keeps
// pointing at the same record when possible and is clamped into the party.
func (r *Roster) MoveToMain(id string) error {
	i := indexOf(r.party, id)
	if i < 0 {
		return ErrNotInParty
	}
	if i == r.activeIndex {
		r.release()
	}
	rec := r.party[i]
	r.party = removeAt(r.party, i)
	r.bench = append(r.bench, rec)

	if i < r.activeIndex {
		r.activeIndex--
	}
	if r.activeIndex >= len(r.party) {
		r.activeIndex = len(r.party) - 1
	}
	if r.activeIndex < 0 {
		r.activeIndex = 0
	}
	r.logger.Debug("moved to bench", zap.String("creature", id), zap.Int("partySize", len(r.party)))
	return nil
}

// SwitchActive makes the party member id active: the current Entity is
// snapshotted and destroyed, then the new one is materialized with its
// equipped item and any pending reward applied.
//
// Postcondition: Returns ErrNotInParty, ErrAlreadyActive, ErrFainted or an
// *InvariantError without mutation. On success exactly one Entity is live.
func (r *Roster) SwitchActive(id string) error {
	i := indexOf(r.party, id)
	if i < 0 {
		return ErrNotInParty
	}
	if i == r.activeIndex {
		return ErrAlreadyActive
	}
	rec := r.party[i]
	if rec.Fainted() {
		return ErrFainted
	}
	m, err := r.prepare("switchActive", rec)
	if err != nil {
		return err
	}

	r.release()
	r.activeIndex = i
	_, err = r.instantiate("switchActive", m)
	return err
}

// Active returns the active party member's Entity, materializing it if none
// is live.
//
// Postcondition: Returns ErrPartyEmpty when there is no party, ErrFainted
// when the active record has zero health, and an *InvariantError when the
// record cannot be materialized. Never creates a second Entity.
func (r *Roster) Active() (*creature.Entity, error) {
	if r.active != nil {
		return r.active, nil
	}
	if len(r.party) == 0 {
		return nil, ErrPartyEmpty
	}
	rec := r.party[r.activeIndex]
	if rec.Fainted() {
		return nil, ErrFainted
	}
	m, err := r.prepare("active", rec)
	if err != nil {
		return nil, err
	}
	return r.instantiate("active", m)
}

// Release snapshots and destroys the live Entity, for context boundaries
// such as returning to a hub. The next Active call re-materializes it.
func (r *Roster) Release() {
	r.release()
}

// Sync snapshots the live Entity into its record without destroying it.
func (r *Roster) Sync() {
	if r.active == nil {
		return
	}
	if err := r.active.SnapshotInto(r.party[r.activeIndex]); err != nil {
		r.logger.Error("snapshot failed", zap.Error(err))
	}
}

// EvolveActive evolves the active Entity into its template's evolution.
//
// Postcondition: Returns creature.ErrCannotEvolve when the evolution is not
// available and an *InvariantError when the target template is missing.
func (r *Roster) EvolveActive() error {
	e, err := r.Active()
	if err != nil {
		return err
	}
	evo := e.Template().Evolution
	if evo == nil || !e.CanEvolve() {
		return creature.ErrCannotEvolve
	}
	into, ok := r.templates.Template(evo.Into)
	if !ok {
		return r.invariant("evolveActive", fmt.Errorf("evolution target %q not found", evo.Into))
	}
	if err := e.Evolve(into); err != nil {
		return err
	}
	r.logger.Info("creature evolved", zap.String("creature", e.ID()), zap.String("into", into.ID))
	return nil
}
