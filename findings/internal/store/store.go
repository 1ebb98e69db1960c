// Package store is the data access layer for the findings-review tables.
// It receives an already-opened *sql.DB; dbopen handles pragmas and schema.
package store

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNoRow is returned by Get operations when the entity does not exist.
// The service layer maps it to its public not-found error.
var ErrNoRow = errors.New("store: no such row")

// Store wraps the findings database.
type Store struct {
	DB *sql.DB
}

// NewStore creates a Store from an open database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// execer is the common write surface of *sql.DB and *sql.Tx. The link
// helpers take it so entity and link writes can share one transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoRow
	}
	return err
}

// requireRow turns a zero-row update or delete into ErrNoRow.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRow
	}
	return nil
}
