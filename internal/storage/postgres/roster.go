package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/menagerie/internal/game/roster"
	"github.com/cory-johannsen/menagerie/internal/storage"
)

// RosterRepository implements roster.Store on PostgreSQL.
type RosterRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

var _ roster.Store = (*RosterRepository)(nil)

// NewRosterRepository creates a RosterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with the roster
// schema applied.
func NewRosterRepository(db *pgxpool.Pool, logger *zap.Logger) *RosterRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterRepository{db: db, logger: logger}
}

// Save replaces owner's saved roster with s in one transaction.
//
// Precondition: owner must be non-empty.
// Postcondition: Returns the validation error without writing when s is
// inconsistent; on success a later Load returns an equal State.
func (r *RosterRepository) Save(ctx context.Context, owner string, s *roster.State) error {
	if owner == "" {
		return errors.New("saving roster: owner must not be empty")
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("saving roster: %w", err)
	}
	h, creatures, items := storage.Flatten(s)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning roster save: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO rosters (owner, active_index, packs, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (owner) DO UPDATE
		SET active_index = EXCLUDED.active_index, packs = EXCLUDED.packs, updated_at = NOW()`,
		owner, h.ActiveIndex, h.Packs,
	)
	batch.Queue(`DELETE FROM roster_items WHERE owner = $1`, owner)
	batch.Queue(`DELETE FROM roster_creatures WHERE owner = $1`, owner)
	for _, c := range creatures {
		batch.Queue(`
			INSERT INTO roster_creatures
				(owner, unique_id, slot, position, template_ref, element, player_owned,
				 level, current_xp, xp_to_next_level, current_health, max_health,
				 base_max_health, base_speed, base_attack_speed, base_attack_damage,
				 pending_xp, pending_heal, evolution_state)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
			owner, c.UniqueID, c.Slot, c.Position, c.TemplateRef, c.Element, c.PlayerOwned,
			c.Level, c.CurrentXP, c.XPToNextLevel, c.CurrentHealth, c.MaxHealth,
			c.BaseMaxHealth, c.BaseSpeed, c.BaseAttackSpeed, c.BaseAttackDamage,
			c.PendingXP, c.PendingHeal, c.EvolutionState,
		)
	}
	for _, it := range items {
		batch.Queue(`
			INSERT INTO roster_items (owner, item_id, def_id, equipped_by)
			VALUES ($1, $2, $3, NULLIF($4, ''))`,
			owner, it.ItemID, it.DefID, it.EquippedBy,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("writing roster: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing roster save: %w", err)
	}
	r.logger.Debug("roster saved",
		zap.String("owner", owner),
		zap.Int("creatures", len(creatures)),
		zap.Int("items", len(items)),
	)
	return nil
}

// Load reads owner's saved roster.
//
// Postcondition: Returns roster.ErrNoSave when owner has never saved.
func (r *RosterRepository) Load(ctx context.Context, owner string) (*roster.State, error) {
	var h storage.Header
	err := r.db.QueryRow(ctx,
		`SELECT active_index, packs FROM rosters WHERE owner = $1`, owner,
	).Scan(&h.ActiveIndex, &h.Packs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, roster.ErrNoSave
		}
		return nil, fmt.Errorf("loading roster header: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT unique_id, slot, position, template_ref, element, player_owned,
		       level, current_xp, xp_to_next_level, current_health, max_health,
		       base_max_health, base_speed, base_attack_speed, base_attack_damage,
		       pending_xp, pending_heal, evolution_state
		FROM roster_creatures WHERE owner = $1 ORDER BY slot, position`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("listing roster creatures: %w", err)
	}
	defer rows.Close()
	creatures := make([]storage.CreatureRow, 0)
	for rows.Next() {
		var c storage.CreatureRow
		if err := rows.Scan(
			&c.UniqueID, &c.Slot, &c.Position, &c.TemplateRef, &c.Element, &c.PlayerOwned,
			&c.Level, &c.CurrentXP, &c.XPToNextLevel, &c.CurrentHealth, &c.MaxHealth,
			&c.BaseMaxHealth, &c.BaseSpeed, &c.BaseAttackSpeed, &c.BaseAttackDamage,
			&c.PendingXP, &c.PendingHeal, &c.EvolutionState,
		); err != nil {
			return nil, fmt.Errorf("scanning roster creature row: %w", err)
		}
		creatures = append(creatures, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing roster creatures: %w", err)
	}

	itemRows, err := r.db.Query(ctx, `
		SELECT item_id, def_id, COALESCE(equipped_by, '')
		FROM roster_items WHERE owner = $1 ORDER BY item_id`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("listing roster items: %w", err)
	}
	defer itemRows.Close()
	items := make([]storage.ItemRow, 0)
	for itemRows.Next() {
		var it storage.ItemRow
		if err := itemRows.Scan(&it.ItemID, &it.DefID, &it.EquippedBy); err != nil {
			return nil, fmt.Errorf("scanning roster item row: %w", err)
		}
		items = append(items, it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("listing roster items: %w", err)
	}

	return storage.Assemble(h, creatures, items)
}

// Delete removes owner's saved roster. Deleting a missing save is not an error.
func (r *RosterRepository) Delete(ctx context.Context, owner string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM rosters WHERE owner = $1`, owner); err != nil {
		return fmt.Errorf("deleting roster: %w", err)
	}
	return nil
}

// Owners lists every owner with a saved roster.
func (r *RosterRepository) Owners(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT owner FROM rosters ORDER BY owner`)
	if err != nil {
		return nil, fmt.Errorf("listing roster owners: %w", err)
	}
	owners, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning roster owners: %w", err)
	}
	return owners, nil
}
