package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/menagerie/internal/content"
	"github.com/cory-johannsen/menagerie/internal/game/notify"
	"github.com/cory-johannsen/menagerie/internal/game/roster"
	"github.com/cory-johannsen/menagerie/internal/server"
	"github.com/cory-johannsen/menagerie/internal/sim"
)

// saveTimeout bounds the final save after a session stops.
const saveTimeout = 10 * time.Second

type simulateOptions struct {
	ticks    int
	duration time.Duration
}

func newSimulateCmd(root *rootOptions) *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a headless play session and save the result",
		Long: `simulate resumes the owner's roster (or starts a new one with the
configured starting packs) and plays it automatically.

With --ticks the session is stepped that many times as fast as possible and
entity events are logged. Otherwise it runs in real time at
sim.tick_interval, printing events, autosaving, and stopping on --duration
or an interrupt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.ticks < 0 {
				return fmt.Errorf("--ticks must be >= 0")
			}
			a, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.close()
			b, err := a.loadContent()
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(store saveStore) error {
				if opts.ticks > 0 {
					return a.runTicks(cmd.Context(), b, store, opts.ticks)
				}
				return a.runLive(cmd.Context(), b, store, opts.duration)
			})
		},
	}
	cmd.Flags().IntVarP(&opts.ticks, "ticks", "n", 0, "step this many ticks immediately instead of running in real time")
	cmd.Flags().DurationVarP(&opts.duration, "duration", "d", 0, "stop a real-time session after this long (0 runs until interrupted)")
	return cmd
}

// runTicks steps the session n times on the calling goroutine.
func (a *app) runTicks(ctx context.Context, b *content.Bundle, store saveStore, n int) error {
	sink := notify.NewLogSink(a.logger.Named("notify"))
	s, _, err := openSession(ctx, a.cfg, b, store, a.owner, sink, a.logger)
	if err != nil {
		return err
	}
	loop := sim.NewLoop(a.cfg.Sim.TickInterval, a.logger.Named("loop"))
	loop.RegisterTick("session", s.Tick)
	for i := 0; i < n; i++ {
		loop.Step()
	}
	if err := store.Save(ctx, a.owner, s.State()); err != nil {
		return fmt.Errorf("saving roster: %w", err)
	}
	writeSummary(a.out, s.Stats())
	return writeRoster(a.out, s.State())
}

// runLive runs the session in real time under a Lifecycle until ctx ends,
// the duration elapses, or the process is interrupted.
func (a *app) runLive(ctx context.Context, b *content.Bundle, store saveStore, duration time.Duration) error {
	sink := notify.NewChannelSink(256)
	s, _, err := openSession(ctx, a.cfg, b, store, a.owner, sink, a.logger)
	if err != nil {
		return err
	}
	loop := sim.NewLoop(a.cfg.Sim.TickInterval, a.logger.Named("loop"))
	loop.RegisterTick("session", s.Tick)

	lc := server.NewLifecycle(a.logger)
	lc.Add("sim-loop", &server.FuncService{StartFn: loop.Run, StopFn: loop.Stop})
	lc.Add("notifications", &server.FuncService{StartFn: func(ctx context.Context) error {
		return printNotifications(ctx, a.out, sink)
	}})
	if every := a.cfg.Sim.AutosaveInterval; every > 0 {
		lc.Add("autosave", &server.FuncService{StartFn: func(ctx context.Context) error {
			return autosave(ctx, loop, s, store, a.owner, every, a.logger)
		}})
	}

	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}
	runErr := lc.Run(ctx)
	sink.Close()
	if dropped := sink.Dropped(); dropped > 0 {
		a.logger.Warn("notifications dropped", zap.Int("count", dropped))
	}

	// Every service has returned, so the session is no longer driven by the loop.
	saveCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := store.Save(saveCtx, a.owner, s.State()); err != nil {
		return errors.Join(runErr, fmt.Errorf("saving roster: %w", err))
	}
	writeSummary(a.out, s.Stats())
	return runErr
}

// printNotifications writes queued notifications to out until ctx ends.
func printNotifications(ctx context.Context, out io.Writer, sink *notify.ChannelSink) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-sink.C():
			if !ok {
				return nil
			}
			fmt.Fprintln(out, formatNotification(n))
		}
	}
}

// autosave periodically snapshots the session on the loop goroutine and
// saves the snapshot from this one.
func autosave(ctx context.Context, loop *sim.Loop, s *sim.Session, store roster.Store, owner string, every time.Duration, logger *zap.Logger) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		var st *roster.State
		if err := loop.Do(ctx, func() { st = s.State() }); err != nil {
			if errors.Is(err, sim.ErrStopped) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := store.Save(ctx, owner, st); err != nil {
			logger.Warn("autosave failed", zap.Error(err))
			continue
		}
		logger.Debug("autosaved", zap.Int("creatures", len(st.Creatures)))
	}
}
