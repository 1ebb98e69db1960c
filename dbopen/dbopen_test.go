package dbopen

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestOpenMemory_SchemaApplied(t *testing.T) {
	db := OpenMemory(t, WithSchema(`CREATE TABLE things (id TEXT PRIMARY KEY, n INTEGER)`))

	if _, err := db.Exec(`INSERT INTO things (id, n) VALUES ('a', 1)`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT n FROM things WHERE id = 'a'`).Scan(&n); err != nil {
		t.Fatalf("select: %v", err)
	}
	if n != 1 {
		t.Errorf("n = %d, want 1", n)
	}
}

func TestOpen_ForeignKeysEnforced(t *testing.T) {
	db := OpenMemory(t, WithSchema(`
		CREATE TABLE parents (id TEXT PRIMARY KEY);
		CREATE TABLE children (id TEXT PRIMARY KEY,
			parent_id TEXT NOT NULL REFERENCES parents(id));
	`))

	_, err := db.Exec(`INSERT INTO children (id, parent_id) VALUES ('c', 'nope')`)
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
}

func TestOpen_ForeignKeysOnEveryPooledConnection(t *testing.T) {
	// WHAT: a delete served by a fresh pooled connection still fires
	// ON DELETE CASCADE.
	// WHY: foreign_keys is a per-connection pragma; a PRAGMA statement
	// issued at open configures only the connection that served it, so
	// the setting has to travel in the DSN to reach the rest of the pool.
	path := filepath.Join(t.TempDir(), "pool.db")
	db, err := Open(path, WithSchema(`
		CREATE TABLE parents (id TEXT PRIMARY KEY);
		CREATE TABLE children (id TEXT PRIMARY KEY,
			parent_id TEXT NOT NULL REFERENCES parents(id) ON DELETE CASCADE);
	`))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	if _, err := db.ExecContext(ctx,
		`INSERT INTO parents (id) VALUES ('p');
		INSERT INTO children (id, parent_id) VALUES ('c', 'p')`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Pin the connection that served the statements above so the delete
	// below is forced onto a different, freshly-opened connection.
	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("pin connection: %v", err)
	}
	defer conn.Close()

	if _, err := db.ExecContext(ctx, `DELETE FROM parents WHERE id = 'p'`); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var orphans int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM children`).Scan(&orphans); err != nil {
		t.Fatal(err)
	}
	if orphans != 0 {
		t.Errorf("cascade did not fire on the pooled connection: %d orphan child row(s) remain", orphans)
	}
}

func TestRunTx_CommitAndRollback(t *testing.T) {
	db := OpenMemory(t, WithSchema(`CREATE TABLE t (id TEXT PRIMARY KEY)`))
	ctx := context.Background()

	if err := RunTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO t (id) VALUES ('kept')`)
		return err
	}); err != nil {
		t.Fatalf("RunTx: %v", err)
	}

	boom := errors.New("boom")
	err := RunTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO t (id) VALUES ('dropped')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (rollback must discard the second insert)", count)
	}
}

func TestIsBusy(t *testing.T) {
	if IsBusy(nil) {
		t.Error("nil is not busy")
	}
	if !IsBusy(errors.New("database is locked (5) (SQLITE_BUSY)")) {
		t.Error("SQLITE_BUSY should be busy")
	}
	if IsBusy(errors.New("syntax error")) {
		t.Error("syntax error is not busy")
	}
}
