package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const historyFileVersion = "1.0"

// A lock file older than this is left over from a crashed writer
const (
	historyLockStale   = 30 * time.Second
	historyLockTimeout = 5 * time.Second
)

// HistoryDocument is the on-disk YAML form of the history log
type HistoryDocument struct {
	Version   string         `yaml:"version"`
	UpdatedAt time.Time      `yaml:"updated_at"`
	Entries   []HistoryEntry `yaml:"entries"`
}

// FileHistoryRepository keeps history in a single YAML document. Each write
// reloads the document under a lock file, applies one change and renames the
// result into place.
type FileHistoryRepository struct {
	mu   sync.Mutex
	path string
}

// NewFileHistoryRepository creates a repository for the YAML file at path
func NewFileHistoryRepository(path string) *FileHistoryRepository {
	return &FileHistoryRepository{path: path}
}

// Path returns the YAML document path
func (r *FileHistoryRepository) Path() string {
	return r.path
}

// LoadAll reads the document; a missing file is an empty history
func (r *FileHistoryRepository) LoadAll(ctx context.Context) ([]HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []HistoryEntry{}, nil
	}
	if err != nil {
		return nil, &StorageError{Path: r.path, Op: "read", Err: err}
	}

	var doc HistoryDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &StorageError{Path: r.path, Op: "read", Err: fmt.Errorf("failed to unmarshal history: %w", err)}
	}
	if doc.Entries == nil {
		doc.Entries = []HistoryEntry{}
	}
	return doc.Entries, nil
}

// Insert adds entry, keeping the document newest first
func (r *FileHistoryRepository) Insert(ctx context.Context, entry HistoryEntry) error {
	return r.update(ctx, func(entries []HistoryEntry) ([]HistoryEntry, error) {
		kept := entries[:0]
		for _, e := range entries {
			if e.ID != entry.ID {
				kept = append(kept, e)
			}
		}
		kept = append(kept, entry)
		sort.SliceStable(kept, func(i, j int) bool { return kept[i].CreatedAt.After(kept[j].CreatedAt) })
		return kept, nil
	})
}

func (r *FileHistoryRepository) SetFavorite(ctx context.Context, id string, favorite bool) error {
	return r.update(ctx, func(entries []HistoryEntry) ([]HistoryEntry, error) {
		for i := range entries {
			if entries[i].ID == id {
				entries[i].Favorite = favorite
				return entries, nil
			}
		}
		return nil, fmt.Errorf("history entry %s: %w", id, ErrNotFound)
	})
}

func (r *FileHistoryRepository) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	return r.update(ctx, func(entries []HistoryEntry) ([]HistoryEntry, error) {
		kept := entries[:0]
		for _, e := range entries {
			if !drop[e.ID] {
				kept = append(kept, e)
			}
		}
		return kept, nil
	})
}

// update runs one read-modify-write cycle while holding the lock file
func (r *FileHistoryRepository) update(ctx context.Context, change func([]HistoryEntry) ([]HistoryEntry, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	unlock, err := r.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	entries, err := r.LoadAll(ctx)
	if err != nil {
		return err
	}
	entries, err = change(entries)
	if err != nil {
		return err
	}
	return r.save(ctx, entries)
}

func (r *FileHistoryRepository) lock(ctx context.Context) (func(), error) {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StorageError{Path: r.path, Op: "lock", Err: err}
	}
	lockPath := r.path + ".lock"
	deadline := time.Now().Add(historyLockTimeout)
	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, &StorageError{Path: r.path, Op: "lock", Err: err}
		}
		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > historyLockStale {
			LogWarn("Removing stale history lock %s", lockPath)
			os.Remove(lockPath)
			continue
		}
		if time.Now().After(deadline) {
			return nil, &StorageError{Path: r.path, Op: "lock", Err: errors.New("timed out waiting for another writer")}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}
}

// save rewrites the document through a temp file and rename
func (r *FileHistoryRepository) save(ctx context.Context, entries []HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &StorageError{Path: r.path, Op: "write", Err: err}
	}

	doc := HistoryDocument{
		Version:   historyFileVersion,
		UpdatedAt: time.Now(),
		Entries:   entries,
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return &EncodingError{Key: r.path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".history-*.yaml")
	if err != nil {
		return &StorageError{Path: r.path, Op: "write", Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StorageError{Path: r.path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StorageError{Path: r.path, Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return &StorageError{Path: r.path, Op: "write", Err: err}
	}
	return nil
}
