package sim

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/menagerie/internal/game/creature"
	"github.com/cory-johannsen/menagerie/internal/game/dice"
	"github.com/cory-johannsen/menagerie/internal/game/gacha"
	"github.com/cory-johannsen/menagerie/internal/game/reward"
	"github.com/cory-johannsen/menagerie/internal/game/roster"
)

// spawnRadius bounds how far from the anchor a creature is placed.
const spawnRadius = 5

// captureThreshold is the health fraction below which a wild creature is
// worth trying to capture.
const captureThreshold = 0.3

// Stats counts what happened during a session.
type Stats struct {
	Ticks       uint64
	Defeated    int
	Captured    int
	Fainted     int
	HubReturns  int
	PacksOpened int
	Evolutions  int
	Pickups     int
}

// SessionOptions configures a Session.
type SessionOptions struct {
	// Roster configures the roster; World, Drops and Placer are supplied by
	// the Session.
	Roster   roster.Options
	Machine  *gacha.Machine
	Wallet   *gacha.Wallet
	Source   dice.Source
	Logger   *zap.Logger
	WildPool []string
	// TickSeconds is the simulated time per tick used for attack timing.
	TickSeconds float64
	// CaptureRate is the chance per tick of attempting to capture a weakened
	// wild creature.
	CaptureRate float64
}

// Session is a headless play loop: it opens packs, fields a party, fights
// wild creatures, collects their drops and returns to the hub when the
// whole party has fainted. A Session is driven by Tick on a Loop.
type Session struct {
	roster  *roster.Roster
	machine *gacha.Machine
	wallet  *gacha.Wallet
	src     dice.Source
	roller  *dice.Roller
	logger  *zap.Logger

	pool        []string
	tickSeconds float64
	captureRate float64
	pickups     []reward.Pickup
	meters      map[string]float64
	stats       Stats
}

// NewSession creates a Session with an empty roster.
//
// Precondition: opts.Roster.Templates, opts.Machine and opts.Wallet must be
// non-nil; opts.WildPool must name resolvable templates.
func NewSession(opts SessionOptions) (*Session, error) {
	s, err := newSession(opts)
	if err != nil {
		return nil, err
	}
	s.roster = roster.New(s.rosterOptions(opts.Roster))
	return s, nil
}

// ResumeSession creates a Session from a saved roster state.
func ResumeSession(opts SessionOptions, st *roster.State, items roster.ItemResolver) (*Session, error) {
	s, err := newSession(opts)
	if err != nil {
		return nil, err
	}
	if s.roster, err = roster.Import(st, items, s.rosterOptions(opts.Roster)); err != nil {
		return nil, err
	}
	s.wallet.AddPacks(st.Packs)
	return s, nil
}

func newSession(opts SessionOptions) (*Session, error) {
	if opts.Roster.Templates == nil || opts.Machine == nil || opts.Wallet == nil {
		return nil, errors.New("sim: session requires templates, a gacha machine and a wallet")
	}
	for _, ref := range opts.WildPool {
		if _, ok := opts.Roster.Templates.Template(ref); !ok {
			return nil, fmt.Errorf("sim: wild pool names unknown template %q", ref)
		}
	}
	if len(opts.WildPool) == 0 {
		return nil, errors.New("sim: wild pool is empty")
	}
	if opts.Source == nil {
		opts.Source = dice.NewCryptoSource()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.TickSeconds <= 0 {
		opts.TickSeconds = 1
	}
	return &Session{
		machine:     opts.Machine,
		wallet:      opts.Wallet,
		src:         opts.Source,
		roller:      dice.NewLoggedRoller(opts.Source, opts.Logger),
		logger:      opts.Logger,
		pool:        opts.WildPool,
		tickSeconds: opts.TickSeconds,
		captureRate: opts.CaptureRate,
		meters:      make(map[string]float64),
	}, nil
}

func (s *Session) rosterOptions(o roster.Options) roster.Options {
	o.World = s
	o.Drops = s
	o.Placer = s
	if o.Source == nil {
		o.Source = s.src
	}
	if o.Logger == nil {
		o.Logger = s.logger
	}
	return o
}

// Roster returns the session's roster. Use it only from the loop goroutine.
func (s *Session) Roster() *roster.Roster { return s.roster }

// Wallet returns the session's pack wallet.
func (s *Session) Wallet() *gacha.Wallet { return s.wallet }

// Stats returns the running counters.
func (s *Session) Stats() Stats { return s.stats }

// State exports the roster together with the unopened pack count.
func (s *Session) State() *roster.State {
	st := s.roster.Export()
	st.Packs = s.wallet.Packs()
	return st
}

// RemoveEntity implements roster.World.
func (s *Session) RemoveEntity(id string) {
	delete(s.meters, id)
}

// SpawnDrops implements roster.DropSink.
func (s *Session) SpawnDrops(_ creature.Position, templateRef string, drops []reward.Pickup) {
	s.stats.Defeated++
	s.pickups = append(s.pickups, drops...)
	s.logger.Debug("drops spawned", zap.String("template", templateRef), zap.Int("count", len(drops)))
}

// FindSpawnNear implements roster.SpawnPlacer.
func (s *Session) FindSpawnNear(p creature.Position) creature.Position {
	return creature.Position{
		X: p.X + float64(dice.Between(s.src, -spawnRadius, spawnRadius)),
		Y: p.Y + float64(dice.Between(s.src, -spawnRadius, spawnRadius)),
		Z: p.Z,
	}
}

// Tick advances the session by one step. It is a TickFunc.
func (s *Session) Tick(n uint64) {
	s.stats.Ticks = n
	s.collectPickups()
	s.openPacks()
	active, ok := s.ensureActive()
	if !ok {
		return
	}
	wild := s.ensureWild(active)
	if wild == nil {
		return
	}
	s.fight(active, wild)
	if s.roster.HasLiveEntity() && active.CanEvolve() {
		if err := s.roster.EvolveActive(); err == nil {
			s.stats.Evolutions++
		}
	}
}

func (s *Session) collectPickups() {
	pending := s.pickups
	s.pickups = nil
	for _, p := range pending {
		if err := reward.Collect(p, s.roster, s.wallet); err != nil {
			s.logger.Debug("pickup not applied", zap.String("kind", string(p.Kind)), zap.Error(err))
			continue
		}
		s.stats.Pickups++
	}
}

func (s *Session) openPacks() {
	for s.wallet.Packs() > 0 {
		res, err := s.machine.Open(s.roster, s.wallet)
		if err != nil {
			s.logger.Warn("opening pack failed", zap.Error(err))
			return
		}
		s.stats.PacksOpened++
		if res.Creature != nil && len(s.roster.Party()) < roster.PartySize {
			if err := s.roster.MoveToParty(res.Creature.UniqueID); err != nil {
				s.logger.Warn("moving new creature to party failed", zap.Error(err))
			}
		}
		if res.Item != nil {
			s.equipSpare(res)
		}
	}
}

// equipSpare puts a newly pulled item on the first party member without one.
func (s *Session) equipSpare(res gacha.Result) {
	for _, rec := range s.roster.Party() {
		if rec.EquippedItemID() != "" {
			continue
		}
		if err := s.roster.EquipItem(rec.UniqueID, res.Item); err == nil {
			return
		}
	}
}

// ensureActive returns a live party Entity, switching away from fainted
// members and returning to the hub when every member has fainted.
func (s *Session) ensureActive() (*creature.Entity, bool) {
	if len(s.roster.Party()) == 0 {
		bench := s.roster.Bench()
		if len(bench) == 0 {
			return nil, false
		}
		if err := s.roster.MoveToParty(bench[0].UniqueID); err != nil {
			s.logger.Warn("fielding bench creature failed", zap.Error(err))
			return nil, false
		}
	}
	e, err := s.roster.Active()
	if err == nil {
		return e, true
	}
	if !errors.Is(err, roster.ErrFainted) {
		s.logger.Warn("no active creature", zap.Error(err))
		return nil, false
	}
	for _, rec := range s.roster.Party() {
		if rec.Fainted() {
			continue
		}
		if err := s.roster.SwitchActive(rec.UniqueID); err == nil {
			e, err = s.roster.Active()
			return e, err == nil
		}
	}
	s.returnToHub()
	e, err = s.roster.Active()
	return e, err == nil
}

// returnToHub releases the live Entity and heals the whole party.
func (s *Session) returnToHub() {
	s.stats.HubReturns++
	s.roster.Release()
	if err := s.roster.HealParty(); err != nil {
		s.logger.Warn("healing party failed", zap.Error(err))
	}
	s.logger.Info("party fainted, returned to hub")
}

func (s *Session) ensureWild(active *creature.Entity) *creature.Entity {
	if wild := s.roster.Wild(); len(wild) > 0 {
		return wild[0]
	}
	ref := s.pool[dice.Pick(s.src, len(s.pool))]
	level := active.Level() + dice.Between(s.src, -1, 1)
	wild, err := s.roster.SpawnWild(ref, level, active.Position())
	if err != nil {
		s.logger.Warn("spawning wild creature failed", zap.String("template", ref), zap.Error(err))
		return nil
	}
	return wild
}

// fight runs one tick of combat. Each side's attack meter fills at its
// attack speed and every full point is one attack.
func (s *Session) fight(active, wild *creature.Entity) {
	if wild.Health() < wild.MaxHealth()*captureThreshold && s.roller.Chance("capture attempt", s.captureRate) {
		if _, err := s.roster.Capture(wild.ID()); err == nil {
			s.stats.Captured++
			return
		}
	}
	for _, pair := range [][2]*creature.Entity{{active, wild}, {wild, active}} {
		attacker, target := pair[0], pair[1]
		s.meters[attacker.ID()] += attacker.Stats().AttackSpeed * s.tickSeconds
		for s.meters[attacker.ID()] >= 1 && !attacker.IsDead() && !target.IsDead() {
			s.meters[attacker.ID()]--
			attacker.Attack(target)
		}
		if target.IsDead() {
			if target.PlayerOwned() {
				s.stats.Fainted++
				delete(s.meters, target.ID())
			}
			return
		}
	}
}
