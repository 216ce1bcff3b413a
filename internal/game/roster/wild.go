package roster

import (
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/menagerie/internal/game/creature"
	"github.com/cory-johannsen/menagerie/internal/game/reward"
)

// HandleDeath implements creature.DeathHandler. A player-owned Entity is
// snapshotted with zero health and destroyed. A wild Entity is removed from
// the world and its drop table is rolled for the drop sink.
func (r *Roster) HandleDeath(e *creature.Entity) {
	if e.PlayerOwned() {
		r.handleFaint(e)
		return
	}
	r.handleWildDeath(e)
}

func (r *Roster) handleFaint(e *creature.Entity) {
	if e != r.active {
		r.logger.Warn("death of an entity that is not active", zap.String("creature", e.ID()))
		return
	}
	rec := r.party[r.activeIndex]
	if err := e.SnapshotInto(rec); err != nil {
		r.logger.Error("snapshot failed", zap.Error(err))
	}
	rec.CurrentHealth = 0
	r.destroy()
	r.logger.Info("creature fainted", zap.String("creature", rec.UniqueID), zap.Int("slot", r.activeIndex))
}

func (r *Roster) handleWildDeath(e *creature.Entity) {
	delete(r.wild, e.ID())
	e.Detach()
	if r.world != nil {
		r.world.RemoveEntity(e.ID())
	}
	var drops []reward.Pickup
	if tbl := e.Template().Drops; tbl != nil {
		drops = reward.GenerateDrops(*tbl, r.src)
	}
	if r.drops != nil {
		r.drops.SpawnDrops(e.Position(), e.TemplateRef(), drops)
	}
	r.logger.Debug("wild creature defeated",
		zap.String("creature", e.ID()),
		zap.String("template", e.TemplateRef()),
		zap.Int("drops", len(drops)),
	)
}

// SpawnWild creates a wild creature of templateRef near p. Wild creatures
// are tracked separately from the party Entity.
func (r *Roster) SpawnWild(templateRef string, level int, p creature.Position) (*creature.Entity, error) {
	tmpl, ok := r.templates.Template(templateRef)
	if !ok {
		return nil, ErrUnknownTemplate
	}
	e := creature.NewWild(tmpl, level, r.rules)
	pos := p
	if r.placer != nil {
		pos = r.placer.FindSpawnNear(p)
	}
	e.SetPosition(pos)
	e.SetDeathHandler(r)
	if r.listener != nil {
		e.Subscribe(r.listener)
	}
	r.wild[e.ID()] = e
	return e, nil
}

// Wild returns the live wild creatures sorted by ID.
func (r *Roster) Wild() []*creature.Entity {
	out := make([]*creature.Entity, 0, len(r.wild))
	for _, e := range r.wild {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Capture attempts to catch the wild creature id. On success it leaves the
// world without drops and a new player-owned record of the same species and
// level joins the bench.
//
// Postcondition: Returns ErrUnknownWild or ErrCaptureFailed; on failure the
// wild creature is untouched.
func (r *Roster) Capture(id string) (*creature.Record, error) {
	e, ok := r.wild[id]
	if !ok || e.IsDead() {
		return nil, ErrUnknownWild
	}
	if !e.Template().CaptureSucceeds(r.src) {
		return nil, ErrCaptureFailed
	}
	rec := r.rules.NewRecord(e.Template(), e.Level(), true)
	if err := r.Acquire(rec); err != nil {
		return nil, err
	}
	delete(r.wild, id)
	e.Detach()
	if r.world != nil {
		r.world.RemoveEntity(id)
	}
	r.logger.Info("creature captured", zap.String("wild", id), zap.String("creature", rec.UniqueID))
	return rec.Clone(), nil
}
