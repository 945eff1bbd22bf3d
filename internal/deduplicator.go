package internal

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Deduplicator suppresses repeats of a key within a time window. Expiry is
// lazy: stale marks are ignored on lookup and swept on the next Mark.
type Deduplicator struct {
	mu     sync.Mutex
	window time.Duration
	clock  clockwork.Clock
	marks  map[string]time.Time
}

// NewDeduplicator creates a deduplicator. A nil clock means the real clock.
func NewDeduplicator(window time.Duration, clock clockwork.Clock) *Deduplicator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Deduplicator{
		window: window,
		clock:  clock,
		marks:  make(map[string]time.Time),
	}
}

// Seen reports whether key was marked less than one window ago
func (d *Deduplicator) Seen(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seenLocked(key, d.clock.Now())
}

// Mark records key as seen now and sweeps expired marks
func (d *Deduplicator) Mark(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.clock.Now()
	d.sweepLocked(now)
	d.marks[key] = now
}

// MarkAt records key as seen at a past instant. An existing later mark wins.
func (d *Deduplicator) MarkAt(key string, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.marks[key]; ok && prev.After(at) {
		return
	}
	d.marks[key] = at
}

// CheckAndMark marks key and reports whether it was already seen. A seen key
// keeps its original mark so the window is not extended.
func (d *Deduplicator) CheckAndMark(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.clock.Now()
	if d.seenLocked(key, now) {
		return true
	}
	d.sweepLocked(now)
	d.marks[key] = now
	return false
}

// IsExpired reports whether key is absent at now, either never marked or
// marked one full window or more before now
func (d *Deduplicator) IsExpired(key string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.seenLocked(key, now)
}

// Sweep physically removes marks that have expired at now
func (d *Deduplicator) Sweep(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweepLocked(now)
}

// Forget drops the mark for key
func (d *Deduplicator) Forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.marks, key)
}

// Len returns the number of marks held, including expired ones not yet swept
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.marks)
}

func (d *Deduplicator) seenLocked(key string, now time.Time) bool {
	at, ok := d.marks[key]
	return ok && now.Sub(at) < d.window
}

func (d *Deduplicator) sweepLocked(now time.Time) {
	for key, at := range d.marks {
		if now.Sub(at) >= d.window {
			delete(d.marks, key)
		}
	}
}
