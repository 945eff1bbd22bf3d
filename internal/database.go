package internal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// busy_timeout lets the app and the share extension wait on each other's
// write locks instead of failing with SQLITE_BUSY.
const sqlitePragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS bridge_kv (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (namespace, key)
);
CREATE TABLE IF NOT EXISTS history (
	id          TEXT PRIMARY KEY,
	source_name TEXT NOT NULL,
	operation   TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	preview     TEXT NOT NULL,
	favorite    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS history_created_at ON history (created_at);`

// OpenDatabase opens (creating if needed) a read-write SQLite database and
// applies the fliey schema
func OpenDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	db, err := sql.Open("sqlite", path+sqlitePragmas)
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: fmt.Errorf("failed to open database: %w", err)}
	}
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: fmt.Errorf("database ping failed: %w", err)}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: fmt.Errorf("schema migration failed: %w", err)}
	}

	return db, nil
}

// TableCounts reports the row count of every fliey table, for diagnostics
func TableCounts(db *sql.DB) (map[string]int, error) {
	counts := make(map[string]int)
	for _, table := range []string{"bridge_kv", "history"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s failed: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
