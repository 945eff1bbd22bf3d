package internal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iksnae/fliey/testutil"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []HistoryEntry {
	base := time.Date(2025, 3, 10, 9, 0, 0, 123456789, time.UTC)
	return []HistoryEntry{
		{ID: "c", SourceName: "Shared extension", Operation: OperationRewrite, CreatedAt: base, Preview: "newest", Favorite: true},
		{ID: "b", SourceName: "notes.pdf", Operation: OperationTranslate, CreatedAt: base.Add(-time.Hour), Preview: "middle"},
		{ID: "a", SourceName: "Text fragment", Operation: OperationSummarize, CreatedAt: base.Add(-2 * time.Hour), Preview: "oldest"},
	}
}

// insertAll stores entries oldest first, the order a running app writes them
func insertAll(t *testing.T, repo HistoryRepository, entries []HistoryEntry) {
	t.Helper()
	for i := len(entries) - 1; i >= 0; i-- {
		require.NoError(t, repo.Insert(context.Background(), entries[i]))
	}
}

func openSQLiteHistory(t *testing.T, path string) *SQLiteHistoryRepository {
	t.Helper()
	db, err := OpenDatabase(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteHistoryRepository(db)
}

func TestSQLiteHistoryRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openSQLiteHistory(t, testutil.TempDBPath(t, "history.db"))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	want := sampleEntries()
	// insertion order does not matter, rows come back newest first
	require.NoError(t, repo.Insert(ctx, want[1]))
	require.NoError(t, repo.Insert(ctx, want[0]))
	require.NoError(t, repo.Insert(ctx, want[2]))

	loaded, err = repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, loaded[i].ID, "entries must be newest first")
		assert.Equal(t, want[i].SourceName, loaded[i].SourceName)
		assert.Equal(t, want[i].Operation, loaded[i].Operation)
		assert.True(t, want[i].CreatedAt.Equal(loaded[i].CreatedAt))
		assert.Equal(t, want[i].Preview, loaded[i].Preview)
		assert.Equal(t, want[i].Favorite, loaded[i].Favorite)
	}
}

func TestSQLiteHistoryRepository_RowOperations(t *testing.T) {
	ctx := context.Background()
	repo := openSQLiteHistory(t, testutil.TempDBPath(t, "history.db"))
	insertAll(t, repo, sampleEntries())

	require.NoError(t, repo.SetFavorite(ctx, "b", true))
	require.NoError(t, repo.SetFavorite(ctx, "c", false))
	err := repo.SetFavorite(ctx, "missing", true)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	require.NoError(t, repo.Delete(ctx, "a", "missing"))
	require.NoError(t, repo.Delete(ctx))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "c", loaded[0].ID)
	assert.False(t, loaded[0].Favorite)
	assert.Equal(t, "b", loaded[1].ID)
	assert.True(t, loaded[1].Favorite)
}

func TestSQLiteHistoryRepository_SkipsUnknownOperation(t *testing.T) {
	ctx := context.Background()
	path := testutil.TempDBPath(t, "history.db")
	repo := openSQLiteHistory(t, path)
	require.NoError(t, repo.Insert(ctx, sampleEntries()[0]))

	raw := testutil.OpenRawDB(t, path)
	testutil.Exec(t, raw,
		"INSERT INTO history (id, source_name, operation, created_at, preview, favorite) VALUES (?, ?, ?, ?, ?, ?)",
		"z", "x", "paraphrase", time.Now().UnixNano(), "", 0)

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "c", loaded[0].ID)
}

func TestSQLiteHistoryRepository_WithStore(t *testing.T) {
	ctx := context.Background()
	path := testutil.TempDBPath(t, "history.db")
	db, err := OpenDatabase(path)
	require.NoError(t, err)
	store, err := OpenHistoryStore(ctx, NewSQLiteHistoryRepository(db), HistoryOptions{})
	require.NoError(t, err)

	entry, ok, err := store.Insert(ctx, &Response{Text: "hello", Operation: OperationSummarize}, "doc.txt")
	require.NoError(t, err)
	require.True(t, ok)
	_, err = store.ToggleFavorite(ctx, entry.ID)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// reopen from disk
	reopened, err := OpenHistoryStore(ctx, openSQLiteHistory(t, path), HistoryOptions{})
	require.NoError(t, err)
	got, err := reopened.Get(entry.ID)
	require.NoError(t, err)
	assert.True(t, got.Favorite)
	assert.Equal(t, "hello", got.Preview)
}

func TestSQLiteHistoryRepository_ConcurrentStores(t *testing.T) {
	ctx := context.Background()
	path := testutil.TempDBPath(t, "history.db")
	clock := clockwork.NewFakeClockAt(historyStart)

	// a long-running watcher and a one-shot command open the same file
	watcher, err := OpenHistoryStore(ctx, openSQLiteHistory(t, path), HistoryOptions{Clock: clock})
	require.NoError(t, err)
	command, err := OpenHistoryStore(ctx, openSQLiteHistory(t, path), HistoryOptions{Clock: clock})
	require.NoError(t, err)

	fromCommand, _, err := command.Insert(ctx, &Response{Text: "a", Operation: OperationSummarize}, "a.txt")
	require.NoError(t, err)
	_, err = command.ToggleFavorite(ctx, fromCommand.ID)
	require.NoError(t, err)

	clock.Advance(time.Minute)
	_, _, err = watcher.Insert(ctx, &Response{Text: "shared", Operation: OperationRewrite}, SourceSharedExtension)
	require.NoError(t, err)

	reopened, err := OpenHistoryStore(ctx, openSQLiteHistory(t, path), HistoryOptions{Clock: clock})
	require.NoError(t, err)
	var sources []string
	for _, e := range reopened.Entries() {
		sources = append(sources, e.SourceName)
	}
	assert.Equal(t, []string{SourceSharedExtension, "a.txt"}, sources, "the watcher must not erase entries written after it opened")
	got, err := reopened.Get(fromCommand.ID)
	require.NoError(t, err)
	assert.True(t, got.Favorite)

	// a delete from the watcher's stale view only removes its own target
	shared := reopened.Entries()[0]
	require.NoError(t, watcher.Delete(ctx, shared.ID))
	reopened, err = OpenHistoryStore(ctx, openSQLiteHistory(t, path), HistoryOptions{Clock: clock})
	require.NoError(t, err)
	require.Equal(t, 1, reopened.Len())
	assert.Equal(t, fromCommand.ID, reopened.Entries()[0].ID)
}
