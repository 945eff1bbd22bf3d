package internal

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLiteKV stores bridge keys in the bridge_kv table
type SQLiteKV struct {
	db        *sql.DB
	namespace string
	ownsDB    bool
}

// NewSQLiteKV creates a store over db. When ownsDB is set, Close closes db.
func NewSQLiteKV(db *sql.DB, namespace string, ownsDB bool) *SQLiteKV {
	return &SQLiteKV{db: db, namespace: namespace, ownsDB: ownsDB}
}

func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM bridge_kv WHERE namespace = ? AND key = ?",
		s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StorageError{Path: s.namespace + "/" + key, Op: "read", Err: err}
	}
	return value, true, nil
}

func (s *SQLiteKV) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bridge_kv (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.namespace, key, value, time.Now().UnixMilli())
	if err != nil {
		return &StorageError{Path: s.namespace + "/" + key, Op: "write", Err: err}
	}
	return nil
}

func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM bridge_kv WHERE namespace = ? AND key = ?",
		s.namespace, key)
	if err != nil {
		return &StorageError{Path: s.namespace + "/" + key, Op: "delete", Err: err}
	}
	return nil
}

// KeyValuePair is a raw bridge_kv row
type KeyValuePair struct {
	Key   string
	Value string
}

// Entries lists every key in the namespace, for diagnostics
func (s *SQLiteKV) Entries(ctx context.Context) ([]KeyValuePair, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value FROM bridge_kv WHERE namespace = ? ORDER BY key", s.namespace)
	if err != nil {
		return nil, &StorageError{Path: s.namespace, Op: "read", Err: err}
	}
	defer rows.Close()

	var pairs []KeyValuePair
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, &StorageError{Path: s.namespace, Op: "read", Err: err}
		}
		pairs = append(pairs, KeyValuePair{Key: key, Value: string(value)})
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Path: s.namespace, Op: "read", Err: err}
	}
	return pairs, nil
}

func (s *SQLiteKV) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
