// Package sqlite opens the analysis history database.
// Uses modernc.org/sqlite, a pure-Go driver (no CGO required).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Register the modernc sqlite driver under the name "sqlite"
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// NewDB opens (or creates) a SQLite database at path:
//   - WAL journal mode (readers don't block the history writer)
//   - 5-second busy timeout
//   - Synchronous=NORMAL
//
// ":memory:" is pinned to one connection, since every new connection would
// otherwise see its own empty database.
// Returns an error if the parent directory does not exist (will not create it).
func NewDB(ctx context.Context, path string) (*sql.DB, error) {
	if path != memoryPath {
		dir := filepath.Dir(path)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil, fmt.Errorf("sqlite.NewDB: parent directory %q does not exist", dir)
		}
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(ON)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.NewDB: open %q: %w", path, err)
	}

	if path == memoryPath {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.NewDB: ping %q: %w", path, err)
	}
	return db, nil
}

// Open is NewDB followed by MigrateUp.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := NewDB(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := MigrateUp(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
