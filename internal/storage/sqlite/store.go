// Package sqlite provides a SQLite-backed roster store for local single
// player saves.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/menagerie/internal/game/roster"
	"github.com/cory-johannsen/menagerie/internal/storage"
	"github.com/cory-johannsen/menagerie/internal/storage/sqlite/migrations"
)

// Store persists rosters in SQLite.
type Store struct {
	sqlDB  *sql.DB
	logger *zap.Logger
}

var _ roster.Store = (*Store)(nil)

// Open opens a SQLite roster store at path and applies embedded migrations.
//
// Postcondition: Returns a ready Store or an error; nothing is left open on
// error.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Debug("sqlite roster store opened", zap.String("path", path))
	return &Store{sqlDB: sqlDB, logger: logger}, nil
}

func applyMigrations(sqlDB *sql.DB) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("read embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("init migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save replaces owner's saved roster with st in one transaction.
//
// Precondition: owner must be non-empty.
// Postcondition: Returns the validation error without writing when st is
// inconsistent.
func (s *Store) Save(ctx context.Context, owner string, st *roster.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(owner) == "" {
		return fmt.Errorf("owner is required")
	}
	if err := st.Validate(); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	h, creatures, items := storage.Flatten(st)

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin roster save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rosters (owner, active_index, packs, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (owner) DO UPDATE
		 SET active_index = excluded.active_index, packs = excluded.packs, updated_at = excluded.updated_at`,
		owner, h.ActiveIndex, h.Packs, time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("upsert roster: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM roster_items WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("clear roster items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM roster_creatures WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("clear roster creatures: %w", err)
	}
	for _, c := range creatures {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO roster_creatures (
			   owner, unique_id, slot, position, template_ref, element, player_owned,
			   level, current_xp, xp_to_next_level, current_health, max_health,
			   base_max_health, base_speed, base_attack_speed, base_attack_damage,
			   pending_xp, pending_heal, evolution_state
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			owner, c.UniqueID, c.Slot, c.Position, c.TemplateRef, c.Element, c.PlayerOwned,
			c.Level, c.CurrentXP, c.XPToNextLevel, c.CurrentHealth, c.MaxHealth,
			c.BaseMaxHealth, c.BaseSpeed, c.BaseAttackSpeed, c.BaseAttackDamage,
			c.PendingXP, c.PendingHeal, c.EvolutionState,
		); err != nil {
			return fmt.Errorf("insert creature %s: %w", c.UniqueID, err)
		}
	}
	for _, it := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO roster_items (owner, item_id, def_id, equipped_by) VALUES (?, ?, ?, NULLIF(?, ''))`,
			owner, it.ItemID, it.DefID, it.EquippedBy,
		); err != nil {
			return fmt.Errorf("insert item %s: %w", it.ItemID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roster save: %w", err)
	}
	s.logger.Debug("roster saved",
		zap.String("owner", owner),
		zap.Int("creatures", len(creatures)),
		zap.Int("items", len(items)),
	)
	return nil
}

// Load reads owner's saved roster.
//
// Postcondition: Returns roster.ErrNoSave when owner has never saved.
func (s *Store) Load(ctx context.Context, owner string) (*roster.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var h storage.Header
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT active_index, packs FROM rosters WHERE owner = ?`, owner,
	).Scan(&h.ActiveIndex, &h.Packs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, roster.ErrNoSave
		}
		return nil, fmt.Errorf("get roster: %w", err)
	}

	creatures, err := s.loadCreatures(ctx, owner)
	if err != nil {
		return nil, err
	}
	items, err := s.loadItems(ctx, owner)
	if err != nil {
		return nil, err
	}
	return storage.Assemble(h, creatures, items)
}

func (s *Store) loadCreatures(ctx context.Context, owner string) ([]storage.CreatureRow, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT unique_id, slot, position, template_ref, element, player_owned,
		        level, current_xp, xp_to_next_level, current_health, max_health,
		        base_max_health, base_speed, base_attack_speed, base_attack_damage,
		        pending_xp, pending_heal, evolution_state
		 FROM roster_creatures WHERE owner = ? ORDER BY slot, position`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("list roster creatures: %w", err)
	}
	defer rows.Close()
	out := make([]storage.CreatureRow, 0)
	for rows.Next() {
		var c storage.CreatureRow
		if err := rows.Scan(
			&c.UniqueID, &c.Slot, &c.Position, &c.TemplateRef, &c.Element, &c.PlayerOwned,
			&c.Level, &c.CurrentXP, &c.XPToNextLevel, &c.CurrentHealth, &c.MaxHealth,
			&c.BaseMaxHealth, &c.BaseSpeed, &c.BaseAttackSpeed, &c.BaseAttackDamage,
			&c.PendingXP, &c.PendingHeal, &c.EvolutionState,
		); err != nil {
			return nil, fmt.Errorf("scan roster creature: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster creatures: %w", err)
	}
	return out, nil
}

func (s *Store) loadItems(ctx context.Context, owner string) ([]storage.ItemRow, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT item_id, def_id, COALESCE(equipped_by, '') FROM roster_items WHERE owner = ? ORDER BY item_id`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("list roster items: %w", err)
	}
	defer rows.Close()
	out := make([]storage.ItemRow, 0)
	for rows.Next() {
		var it storage.ItemRow
		if err := rows.Scan(&it.ItemID, &it.DefID, &it.EquippedBy); err != nil {
			return nil, fmt.Errorf("scan roster item: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster items: %w", err)
	}
	return out, nil
}

// Delete removes owner's saved roster. Deleting a missing save is not an error.
func (s *Store) Delete(ctx context.Context, owner string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM rosters WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("delete roster: %w", err)
	}
	return nil
}

// Owners lists every owner with a saved roster.
func (s *Store) Owners(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT owner FROM rosters ORDER BY owner`)
	if err != nil {
		return nil, fmt.Errorf("list roster owners: %w", err)
	}
	defer rows.Close()
	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan roster owner: %w", err)
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}
