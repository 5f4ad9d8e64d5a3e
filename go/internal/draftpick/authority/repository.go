// Package authority is the identity authority for draft picks: the relational
// store that allocates ids, enforces player name uniqueness, and decides
// whether a pick exists at all.
package authority

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mcdev12/draftmirror/go/internal/models"
	"github.com/mcdev12/draftmirror/go/internal/sqlutil"
)

var (
	// ErrNotFound is returned when no row has the requested id.
	ErrNotFound = errors.New("draft pick not found")
	// ErrConflict is returned when a write would duplicate a player name.
	ErrConflict = errors.New("player name already drafted")
)

const selectColumns = `SELECT id, pick_number, pro_team_name, player_name, amateur_team_name FROM draft_picks`

// Repository implements draft pick persistence over database/sql.
type Repository struct {
	db      *sql.DB
	dialect sqlutil.Dialect
}

// NewRepository creates a new authority repository for the given dialect.
func NewRepository(db *sql.DB, dialect sqlutil.Dialect) *Repository {
	return &Repository{
		db:      db,
		dialect: dialect,
	}
}

// CreateDraftPick inserts a new row and returns its allocated id.
func (r *Repository) CreateDraftPick(ctx context.Context, fields models.DraftPickFields) (int64, error) {
	var id int64
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, r.dialect.Rebind(`
			INSERT INTO draft_picks (pick_number, pro_team_name, player_name, amateur_team_name)
			VALUES (?, ?, ?, ?)
			RETURNING id`),
			fields.PickNumber, fields.ProTeam, fields.PlayerName, sqlutil.ToSqlString(fields.AmateurTeam),
		)
		return row.Scan(&id)
	})
	if err != nil {
		if sqlutil.IsUniqueViolation(err) {
			return 0, fmt.Errorf("create draft pick for %q: %w", fields.PlayerName, ErrConflict)
		}
		return 0, fmt.Errorf("failed to create draft pick: %w", err)
	}
	return id, nil
}

// GetDraftPick retrieves a draft pick by id.
func (r *Repository) GetDraftPick(ctx context.Context, id int64) (*models.DraftPick, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(selectColumns+` WHERE id = ?`), id)
	pick, err := scanDraftPick(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("draft pick %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft pick: %w", err)
	}
	return pick, nil
}

// FindByPlayerName returns the pick for a player, or nil when there is none.
func (r *Repository) FindByPlayerName(ctx context.Context, name string) (*models.DraftPick, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(selectColumns+` WHERE player_name = ?`), name)
	pick, err := scanDraftPick(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find draft pick by player name: %w", err)
	}
	return pick, nil
}

// UpdateDraftPick overwrites every mutable column of an existing pick.
func (r *Repository) UpdateDraftPick(ctx context.Context, id int64, fields models.DraftPickFields) error {
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, r.dialect.Rebind(`
			UPDATE draft_picks
			SET pick_number = ?, pro_team_name = ?, player_name = ?, amateur_team_name = ?
			WHERE id = ?`),
			fields.PickNumber, fields.ProTeam, fields.PlayerName, sqlutil.ToSqlString(fields.AmateurTeam), id,
		)
		if err != nil {
			return err
		}
		return requireOneRow(res, id)
	})
	if err != nil {
		if sqlutil.IsUniqueViolation(err) {
			return fmt.Errorf("update draft pick %d: %w", id, ErrConflict)
		}
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update draft pick: %w", err)
	}
	return nil
}

// DeleteDraftPick removes a pick by id.
func (r *Repository) DeleteDraftPick(ctx context.Context, id int64) error {
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM draft_picks WHERE id = ?`), id)
		if err != nil {
			return err
		}
		return requireOneRow(res, id)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete draft pick: %w", err)
	}
	return nil
}

// ListDraftPicks returns every pick ordered by id.
func (r *Repository) ListDraftPicks(ctx context.Context) ([]models.DraftPick, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft picks: %w", err)
	}
	defer rows.Close()

	picks := []models.DraftPick{}
	for rows.Next() {
		pick, err := scanDraftPick(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft pick: %w", err)
		}
		picks = append(picks, *pick)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list draft picks: %w", err)
	}
	return picks, nil
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraftPick(row rowScanner) (*models.DraftPick, error) {
	var (
		pick    models.DraftPick
		amateur sql.NullString
	)
	if err := row.Scan(&pick.ID, &pick.PickNumber, &pick.ProTeam, &pick.PlayerName, &amateur); err != nil {
		return nil, err
	}
	pick.AmateurTeam = sqlutil.FromSqlString(amateur, "")
	return &pick, nil
}

func requireOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected count: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("draft pick %d: %w", id, ErrNotFound)
	}
	return nil
}
