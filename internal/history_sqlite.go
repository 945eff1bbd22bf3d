package internal

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteHistoryRepository keeps history in the history table
type SQLiteHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteHistoryRepository creates a repository over a database opened
// with OpenDatabase
func NewSQLiteHistoryRepository(db *sql.DB) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{db: db}
}

func (r *SQLiteHistoryRepository) LoadAll(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, source_name, operation, created_at, preview, favorite FROM history ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, &StorageError{Path: "history", Op: "read", Err: fmt.Errorf("query failed: %w", err)}
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var (
			e         HistoryEntry
			op        string
			createdAt int64
			favorite  int
		)
		if err := rows.Scan(&e.ID, &e.SourceName, &op, &createdAt, &e.Preview, &favorite); err != nil {
			return nil, &StorageError{Path: "history", Op: "read", Err: fmt.Errorf("scan failed: %w", err)}
		}
		parsed, err := ParseOperation(op)
		if err != nil {
			// Skip rows written by a newer version
			LogWarn("Skipping history entry %s: %v", e.ID, err)
			continue
		}
		e.Operation = parsed
		e.CreatedAt = time.Unix(0, createdAt)
		e.Favorite = favorite != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Path: "history", Op: "read", Err: fmt.Errorf("rows iteration error: %w", err)}
	}
	return entries, nil
}

// Insert adds one row; an existing id is replaced
func (r *SQLiteHistoryRepository) Insert(ctx context.Context, e HistoryEntry) error {
	favorite := 0
	if e.Favorite {
		favorite = 1
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO history (id, source_name, operation, created_at, preview, favorite) VALUES (?, ?, ?, ?, ?, ?)",
		e.ID, e.SourceName, string(e.Operation), e.CreatedAt.UnixNano(), e.Preview, favorite)
	if err != nil {
		return &StorageError{Path: "history", Op: "write", Err: err}
	}
	return nil
}

func (r *SQLiteHistoryRepository) SetFavorite(ctx context.Context, id string, favorite bool) error {
	value := 0
	if favorite {
		value = 1
	}
	res, err := r.db.ExecContext(ctx, "UPDATE history SET favorite = ? WHERE id = ?", value, id)
	if err != nil {
		return &StorageError{Path: "history", Op: "write", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &StorageError{Path: "history", Op: "write", Err: err}
	}
	if n == 0 {
		return fmt.Errorf("history entry %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteHistoryRepository) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Path: "history", Op: "write", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM history WHERE id = ?")
	if err != nil {
		return &StorageError{Path: "history", Op: "write", Err: err}
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return &StorageError{Path: "history", Op: "write", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &StorageError{Path: "history", Op: "write", Err: err}
	}
	return nil
}
