package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KVStore is a namespaced key-value medium shared between processes.
// Each Set is atomic per key; nothing is atomic across keys.
type KVStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// NewKVStore opens the bridge medium selected by cfg.Backend
func NewKVStore(cfg BridgeConfig) (KVStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "file", "":
		return NewFileKV(cfg.Dir, cfg.Namespace), nil
	case "sqlite":
		db, err := OpenDatabase(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteKV(db, cfg.Namespace, true), nil
	case "redis":
		return NewRedisKV(cfg.RedisAddr, cfg.RedisDB, cfg.Namespace), nil
	default:
		return nil, fmt.Errorf("unknown bridge backend %q", cfg.Backend)
	}
}

// FileKV stores one file per key under <base>/<namespace>/
type FileKV struct {
	dir string
}

// NewFileKV creates a file-backed store. The directory is created lazily so
// a missing or unwritable location surfaces as ErrStorageUnavailable.
func NewFileKV(baseDir, namespace string) *FileKV {
	return &FileKV{dir: filepath.Join(baseDir, namespace)}
}

// Dir returns the namespace directory
func (s *FileKV) Dir() string {
	return s.dir
}

func (s *FileKV) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

func (s *FileKV) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return &StorageError{Path: s.dir, Op: "open", Err: err}
	}
	return nil
}

func (s *FileKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	if err := s.ensureDir(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StorageError{Path: path, Op: "read", Err: err}
	}
	return data, true, nil
}

// Set writes value to a temp file and renames it over the key, so readers
// see either the old or the new value.
func (s *FileKV) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.ensureDir(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+".tmp-*")
	if err != nil {
		return &StorageError{Path: path, Op: "write", Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StorageError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StorageError{Path: path, Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &StorageError{Path: path, Op: "write", Err: err}
	}
	return nil
}

func (s *FileKV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Path: path, Op: "delete", Err: err}
	}
	return nil
}

func (s *FileKV) Close() error {
	return nil
}
