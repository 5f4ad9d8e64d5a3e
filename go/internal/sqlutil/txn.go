package sqlutil

import (
	"context"
	"database/sql"
	"fmt"
)

// Run executes fn inside a *sql.Tx.
// If fn returns an error the tx rolls back, else it commits.
func Run(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil) // BEGIN
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback() // ROLLBACK
		return err
	}
	if err := tx.Commit(); err != nil { // COMMIT
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
