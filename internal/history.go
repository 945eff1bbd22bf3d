package internal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Default history policy
const (
	DefaultDedupWindow   = 30 * time.Minute
	DefaultRetentionDays = 7
	DefaultPreviewLength = 100
)

// HistoryEntry is one completed operation in the history log
type HistoryEntry struct {
	ID         string    `json:"id" yaml:"id"`
	SourceName string    `json:"sourceName" yaml:"source_name"`
	Operation  Operation `json:"operation" yaml:"operation"`
	CreatedAt  time.Time `json:"createdAt" yaml:"created_at"`
	Preview    string    `json:"preview" yaml:"preview"`
	Favorite   bool      `json:"favorite" yaml:"favorite"`
}

// DedupKey identifies entries for the same source, operation and calendar day
func (e HistoryEntry) DedupKey() string {
	return fmt.Sprintf("%s_%s_%s", e.SourceName, e.Operation, e.CreatedAt.Format("2006-01-02"))
}

// HistoryRepository is the durable medium behind a HistoryStore. Several
// processes may share one repository, so writes are per entry: a store only
// ever touches the rows it changes and never rewrites a stale snapshot.
type HistoryRepository interface {
	// LoadAll returns every entry, newest first.
	LoadAll(ctx context.Context) ([]HistoryEntry, error)
	Insert(ctx context.Context, entry HistoryEntry) error
	// SetFavorite fails with ErrNotFound when id is not stored.
	SetFavorite(ctx context.Context, id string, favorite bool) error
	// Delete removes ids; missing ids are ignored.
	Delete(ctx context.Context, ids ...string) error
}

// HistoryOptions tunes a HistoryStore; zero values take the defaults
type HistoryOptions struct {
	DedupWindow   time.Duration
	PreviewLength int
	// RetentionDays is applied once when the store is opened; negative
	// disables the load-time purge.
	RetentionDays int
	Clock         clockwork.Clock
}

// HistoryStore is the in-memory, newest-first history log. Every mutation is
// written through to the repository; a failed write rolls the mutation back.
type HistoryStore struct {
	mu         sync.Mutex
	repo       HistoryRepository
	entries    []HistoryEntry
	dedup      *Deduplicator
	clock      clockwork.Clock
	previewLen int
}

// OpenHistoryStore loads every entry from repo and purges expired ones.
// Entries younger than the dedup window are marked as already seen.
func OpenHistoryStore(ctx context.Context, repo HistoryRepository, opts HistoryOptions) (*HistoryStore, error) {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.DedupWindow == 0 {
		opts.DedupWindow = DefaultDedupWindow
	}
	if opts.PreviewLength <= 0 {
		opts.PreviewLength = DefaultPreviewLength
	}

	entries, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	s := &HistoryStore{
		repo:       repo,
		entries:    entries,
		dedup:      NewDeduplicator(opts.DedupWindow, opts.Clock),
		clock:      opts.Clock,
		previewLen: opts.PreviewLength,
	}

	// recent entries suppress repeats across restarts
	now := opts.Clock.Now()
	for _, e := range entries {
		if now.Sub(e.CreatedAt) < opts.DedupWindow {
			s.dedup.MarkAt(e.DedupKey(), e.CreatedAt)
		}
	}

	if opts.RetentionDays >= 0 {
		removed, err := s.PurgeExpired(ctx, opts.Clock.Now(), opts.RetentionDays)
		if err != nil {
			return nil, err
		}
		if removed > 0 {
			LogInfo("Purged %d expired history entries", removed)
		}
	}
	return s, nil
}

// Insert records resp under sourceName. The boolean is false when the insert
// was suppressed because the same dedup key was inserted within the window.
func (s *HistoryStore) Insert(ctx context.Context, resp *Response, sourceName string) (HistoryEntry, bool, error) {
	if resp == nil {
		return HistoryEntry{}, false, &ValidationError{Field: "response", Message: "must not be nil"}
	}

	entry := HistoryEntry{
		ID:         uuid.NewString(),
		SourceName: sourceName,
		Operation:  resp.Operation,
		CreatedAt:  s.clock.Now(),
		Preview:    truncateRunes(resp.Text, s.previewLen),
	}
	key := entry.DedupKey()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dedup.IsExpired(key, entry.CreatedAt) {
		LogDebug("Suppressed duplicate history entry %s", key)
		return HistoryEntry{}, false, nil
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		return HistoryEntry{}, false, err
	}
	next := make([]HistoryEntry, 0, len(s.entries)+1)
	next = append(next, entry)
	s.entries = append(next, s.entries...)
	s.dedup.Mark(key)
	return entry, true, nil
}

// PurgeExpired removes non-favorite entries created on a calendar day more
// than retentionDays before now's day. It returns how many were removed.
func (s *HistoryStore) PurgeExpired(ctx context.Context, now time.Time, retentionDays int) (int, error) {
	cutoff := startOfDay(now).AddDate(0, 0, -retentionDays)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]HistoryEntry, 0, len(s.entries))
	var expired []string
	for _, e := range s.entries {
		if !e.Favorite && startOfDay(e.CreatedAt.In(now.Location())).Before(cutoff) {
			expired = append(expired, e.ID)
			continue
		}
		kept = append(kept, e)
	}

	if len(expired) == 0 {
		return 0, nil
	}
	if err := s.repo.Delete(ctx, expired...); err != nil {
		return 0, err
	}
	s.entries = kept
	return len(expired), nil
}

// ToggleFavorite flips the favorite flag of the entry with id
func (s *HistoryStore) ToggleFavorite(ctx context.Context, id string) (HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return HistoryEntry{}, fmt.Errorf("history entry %s: %w", id, ErrNotFound)
	}

	entry := s.entries[i]
	entry.Favorite = !entry.Favorite
	if err := s.repo.SetFavorite(ctx, id, entry.Favorite); err != nil {
		return HistoryEntry{}, err
	}
	s.entries[i] = entry
	return entry, nil
}

// Delete removes the entry with id
func (s *HistoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("history entry %s: %w", id, ErrNotFound)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	next := make([]HistoryEntry, 0, len(s.entries)-1)
	next = append(next, s.entries[:i]...)
	s.entries = append(next, s.entries[i+1:]...)
	return nil
}

// Entries returns a copy of every entry, newest first
func (s *HistoryStore) Entries() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]HistoryEntry(nil), s.entries...)
}

// Get returns the entry with id. A unique prefix of the id is accepted.
func (s *HistoryStore) Get(id string) (HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return s.entries[i], nil
	}

	var match *HistoryEntry
	for i := range s.entries {
		if len(id) > 0 && len(s.entries[i].ID) > len(id) && s.entries[i].ID[:len(id)] == id {
			if match != nil {
				return HistoryEntry{}, &ValidationError{Field: "id", Message: fmt.Sprintf("prefix %q is ambiguous", id)}
			}
			match = &s.entries[i]
		}
	}
	if match == nil {
		return HistoryEntry{}, fmt.Errorf("history entry %s: %w", id, ErrNotFound)
	}
	return *match, nil
}

// ByOperation returns the entries for op, newest first
func (s *HistoryStore) ByOperation(op Operation) []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []HistoryEntry
	for _, e := range s.entries {
		if e.Operation == op {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries
func (s *HistoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *HistoryStore) indexOf(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// NewHistoryRepository opens the repository selected by cfg.Backend
func NewHistoryRepository(cfg HistoryConfig) (HistoryRepository, func() error, error) {
	switch cfg.Backend {
	case "yaml":
		return NewFileHistoryRepository(cfg.Path), func() error { return nil }, nil
	case "sqlite", "":
		db, err := OpenDatabase(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteHistoryRepository(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}
