package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/fliey/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFileHistoryRepository_MissingFile(t *testing.T) {
	repo := NewFileHistoryRepository(filepath.Join(t.TempDir(), "history.yaml"))
	entries, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileHistoryRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(testutil.CreateTempDir(t), "nested", "history.yaml")
	repo := NewFileHistoryRepository(path)
	assert.Equal(t, path, repo.Path())

	want := sampleEntries()
	insertAll(t, repo, want)

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, loaded[i].ID)
		assert.Equal(t, want[i].Operation, loaded[i].Operation)
		assert.True(t, want[i].CreatedAt.Equal(loaded[i].CreatedAt))
		assert.Equal(t, want[i].Favorite, loaded[i].Favorite)
	}

	// document is plain YAML with snake_case keys
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, historyFileVersion, doc["version"])
	first := doc["entries"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Shared extension", first["source_name"])
	assert.Equal(t, "rewrite", first["operation"])

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".history-*"))
	assert.Empty(t, matches, "temp files should not be left behind")
}

func TestFileHistoryRepository_RowOperations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.yaml")
	repo := NewFileHistoryRepository(path)
	insertAll(t, repo, sampleEntries())

	require.NoError(t, repo.SetFavorite(ctx, "b", true))
	assert.True(t, errors.Is(repo.SetFavorite(ctx, "missing", true), ErrNotFound))
	require.NoError(t, repo.Delete(ctx, "a"))

	// a second handle on the same file sees every change and adds its own
	other := NewFileHistoryRepository(path)
	late := HistoryEntry{ID: "d", SourceName: "late.txt", Operation: OperationSummarize, CreatedAt: sampleEntries()[0].CreatedAt.Add(time.Minute)}
	require.NoError(t, other.Insert(ctx, late))
	require.NoError(t, repo.SetFavorite(ctx, "c", false))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	var ids []string
	for _, e := range loaded {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"d", "c", "b"}, ids)
	assert.False(t, loaded[1].Favorite)
	assert.True(t, loaded[2].Favorite)

	_, err = os.Stat(path + ".lock")
	assert.True(t, errors.Is(err, os.ErrNotExist), "lock file should be released")
}

func TestFileHistoryRepository_StaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.yaml")
	testutil.WriteFile(t, path+".lock", nil)
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path+".lock", old, old))

	repo := NewFileHistoryRepository(path)
	require.NoError(t, repo.Insert(context.Background(), sampleEntries()[0]))
}

func TestFileHistoryRepository_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.yaml")
	testutil.WriteFile(t, path, []byte("entries: [unterminated"))

	_, err := NewFileHistoryRepository(path).LoadAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
}

func TestFileHistoryRepository_Unwritable(t *testing.T) {
	// a regular file where the parent directory should be
	blocker := filepath.Join(t.TempDir(), "blocker")
	testutil.WriteFile(t, blocker, []byte("x"))

	err := NewFileHistoryRepository(filepath.Join(blocker, "history.yaml")).Insert(context.Background(), sampleEntries()[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
}

func TestNewHistoryRepository(t *testing.T) {
	dir := t.TempDir()

	repo, closeFn, err := NewHistoryRepository(HistoryConfig{Backend: "yaml", Path: filepath.Join(dir, "h.yaml")})
	require.NoError(t, err)
	assert.IsType(t, &FileHistoryRepository{}, repo)
	assert.NoError(t, closeFn())

	repo, closeFn, err = NewHistoryRepository(HistoryConfig{Backend: "sqlite", Path: filepath.Join(dir, "h.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteHistoryRepository{}, repo)
	assert.NoError(t, closeFn())

	_, _, err = NewHistoryRepository(HistoryConfig{Backend: "etcd"})
	assert.Error(t, err)
}
