package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/menagerie/internal/config"
	"github.com/cory-johannsen/menagerie/internal/content"
	"github.com/cory-johannsen/menagerie/internal/observability"
)

type rootOptions struct {
	configPath string
	owner      string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "menagerie",
		Short: "Collect, train and evolve a roster of creatures",
		Long: `menagerie runs headless play sessions for a single owner's roster:
opening packs, fielding a party, fighting wild creatures and collecting
their drops. Rosters are saved to SQLite or PostgreSQL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "configs/dev.yaml", "path to configuration file")
	cmd.PersistentFlags().StringVarP(&opts.owner, "owner", "o", "player", "owner of the saved roster")

	cmd.AddCommand(
		newSimulateCmd(opts),
		newShowCmd(opts),
		newSavesCmd(opts),
		newResetCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newCatalogCmd(opts),
	)
	return cmd
}

// app is the wiring shared by every subcommand.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	out    io.Writer
	owner  string
}

// loadApp reads configuration and builds the logger.
//
// Postcondition: The caller must call a.close when done.
func loadApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	if opts.owner == "" {
		return nil, fmt.Errorf("--owner must not be empty")
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return &app{
		cfg:    cfg,
		logger: observability.ForOwner(logger, opts.owner),
		out:    cmd.OutOrStdout(),
		owner:  opts.owner,
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// loadContent loads game data, logging how long it took.
func (a *app) loadContent() (*content.Bundle, error) {
	start := time.Now()
	b, err := content.Load(a.cfg.Content, a.cfg.Roster, a.logger)
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	a.logger.Info("content loaded", zap.Duration("elapsed", time.Since(start)))
	return b, nil
}

// withStore opens the configured store, runs fn and closes the store.
func (a *app) withStore(ctx context.Context, fn func(saveStore) error) error {
	store, err := openStore(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
