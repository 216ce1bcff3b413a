package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/menagerie/internal/config"
	"github.com/cory-johannsen/menagerie/internal/content"
	"github.com/cory-johannsen/menagerie/internal/game/dice"
	"github.com/cory-johannsen/menagerie/internal/game/gacha"
	"github.com/cory-johannsen/menagerie/internal/game/notify"
	"github.com/cory-johannsen/menagerie/internal/game/roster"
	"github.com/cory-johannsen/menagerie/internal/sim"
)

// newSource returns a seeded source when seed is set, crypto randomness
// otherwise.
func newSource(seed uint64) dice.Source {
	if seed != 0 {
		return dice.NewSeededSource(seed)
	}
	return dice.NewCryptoSource()
}

// openSession resumes owner's saved roster or, when there is none, starts
// an empty roster holding the configured starting packs. Entity events are
// reported to sink.
//
// Postcondition: resumed reports whether a save was found.
func openSession(ctx context.Context, cfg config.Config, b *content.Bundle, store roster.Store, owner string, sink notify.Sink, logger *zap.Logger) (s *sim.Session, resumed bool, err error) {
	src := newSource(cfg.Sim.Seed)
	machine, err := gacha.NewMachine(
		gacha.BaseForms(b.Templates.All()),
		b.Items.All(),
		cfg.Gacha.CreatureChance,
		b.Rules,
		src,
		logger.Named("gacha"),
	)
	if err != nil {
		return nil, false, fmt.Errorf("building gacha machine: %w", err)
	}
	pool, err := b.WildPool(cfg.Sim.WildPool)
	if err != nil {
		return nil, false, err
	}
	opts := sim.SessionOptions{
		Roster: roster.Options{
			Templates:    b.Templates,
			Rules:        b.Rules,
			Listener:     notify.NewWatcher(sink),
			PendingXPCap: cfg.Roster.PendingXPCap,
			Logger:       logger.Named("roster"),
		},
		Machine:     machine,
		Wallet:      gacha.NewWallet(0),
		Source:      src,
		Logger:      logger.Named("session"),
		WildPool:    pool,
		TickSeconds: cfg.Sim.TickInterval.Seconds(),
		CaptureRate: cfg.Sim.CaptureRate,
	}

	st, err := store.Load(ctx, owner)
	switch {
	case errors.Is(err, roster.ErrNoSave):
		opts.Wallet = gacha.NewWallet(cfg.Gacha.StartingPacks)
		s, err = sim.NewSession(opts)
		if err != nil {
			return nil, false, fmt.Errorf("starting session: %w", err)
		}
		logger.Info("new roster", zap.Int("packs", cfg.Gacha.StartingPacks))
		return s, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("loading save: %w", err)
	}
	s, err = sim.ResumeSession(opts, st, b.Items)
	if err != nil {
		return nil, false, fmt.Errorf("resuming session: %w", err)
	}
	logger.Info("roster resumed",
		zap.Int("creatures", len(st.Creatures)),
		zap.Int("items", len(st.Items)),
		zap.Int("packs", st.Packs),
	)
	return s, true, nil
}
