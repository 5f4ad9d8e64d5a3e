package authority

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftmirror/go/internal/draftpick/authority/migrations"
	"github.com/mcdev12/draftmirror/go/internal/sqlutil"
)

// Migrate applies pending schema migrations for the repository's dialect.
// It is safe to call on every startup.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY
		)`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	row := r.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("getting current schema version: %w", err)
	}

	dir := string(r.dialect)
	entries, err := fs.ReadDir(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("reading migrations for %s: %w", dir, err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_draft_picks.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}

		content, err := fs.ReadFile(migrations.FS, dir+"/"+name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		err = sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(content)); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, r.dialect.Rebind("INSERT INTO schema_migrations (version) VALUES (?)"), version)
			return err
		})
		if err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		log.Info().Str("dialect", dir).Int("version", version).Msg("applied schema migration")
	}

	return nil
}
