package db

import (
	"database/sql"
	"fmt"
)

// WithTx runs fn inside a transaction and commits it when fn returns nil.
// Any error (or panic) rolls the transaction back, so a failed assignment is
// never left half-applied.
func WithTx(db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
